package contracttest

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
	sessionstoreport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

type CleanupFunc = func()

type SessionStoreFactory func(t *testing.T) (sessionstoreport.Store, CleanupFunc)

// RunSessionStore exercises the sessionstore.Store contract: empty-load,
// exact round-trip, overwrite, and idempotent clear. Every backend adapter
// runs this same suite.
func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Empty slot.
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("Load empty: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	now := time.Unix(1700000000, 0).UTC()
	rec := sessionstoreport.Record{
		Profile: domain.CoachProfile{
			ID:              domain.ProfileID(uuid.NewString()),
			Email:           "new@x.com",
			Name:            "Alice Coach",
			Title:           "Leadership Coach",
			Location:        "Berlin",
			LinkedInURL:     "https://linkedin.com/in/alice-coach",
			PhotoRef:        "data:image/png;base64,aGk=",
			Languages:       []string{"English", "German"},
			Bio:             "Coaching since 2015.",
			MonthlyCapacity: 15,
			SchedulingURL:   "https://calendly.com/alice-coach",
			IsOnboarded:     false,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Invited:      true,
		CurrentStep:  domain.StepReviewDetails,
	}

	// Save then load must reproduce the identical record.
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("round-trip mismatch:\n got=%+v\nwant=%+v", got, rec)
	}

	// Overwrite semantics: the slot holds exactly one record.
	rec2 := rec
	rec2.Profile = domain.CloneProfile(rec.Profile)
	rec2.Profile.Bio = "Updated bio."
	rec2.Profile.IsOnboarded = true
	rec2.CurrentStep = domain.StepComplete
	rec2.Invited = false
	if err := store.Save(ctx, rec2); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, ok, err = store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load after overwrite: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, rec2) {
		t.Fatalf("overwrite mismatch:\n got=%+v\nwant=%+v", got, rec2)
	}

	// Clear empties the slot and is idempotent.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("Load after clear: ok=%v err=%v", ok, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear twice: %v", err)
	}
}
