package sessionstore

import (
	"context"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
)

// Record is the persistence shape for the single active session.
//
// It is a flat aggregate: the coach profile plus session-scoped flags. A save
// followed by a load must reproduce the record exactly.
type Record struct {
	Profile domain.CoachProfile

	// PasswordHash is the bcrypt verifier chosen at the set-password step.
	// Empty for the demo identity (its credential is configuration-provided).
	PasswordHash string

	// Invited marks a freshly invited coach: the wizard always starts at the
	// first step with no pre-existing data. Cleared for returning/demo users.
	Invited bool

	// CurrentStep is the authoritative wizard position. Views must not infer
	// position from which fields happen to be populated.
	CurrentStep domain.WizardStep
}

// Store is single-slot durable persistence for the session record.
//
// Implementations must be idempotent and atomic at the granularity of one
// Save. Malformed stored data is reported as absent (ok=false), never as an
// error: the application fails open to the signed-out state.
type Store interface {
	Load(ctx context.Context) (Record, bool, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// CloneRecord returns a deep copy of rec.
func CloneRecord(rec Record) Record {
	out := rec
	out.Profile = domain.CloneProfile(rec.Profile)
	return out
}
