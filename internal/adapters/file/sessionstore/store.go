// Package sessionstore persists the single session slot as a JSON file.
//
// This is the durable default for single-host deployments: it survives
// process restarts and mirrors the flat record shape the browser prototype
// kept in local storage.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// storedSession is the on-disk shape: the profile flattened together with the
// session flags. Field names follow the original client-side record.
type storedSession struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name,omitempty"`
	Title             string    `json:"title,omitempty"`
	Location          string    `json:"location,omitempty"`
	LinkedinURL       string    `json:"linkedinUrl,omitempty"`
	ProfilePhoto      string    `json:"profilePhoto,omitempty"`
	Languages         []string  `json:"languages,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	PreferredCoachees int       `json:"preferredCoachees,omitempty"`
	CalendlyURL       string    `json:"calendlyUrl,omitempty"`
	IsOnboarded       bool      `json:"isOnboarded"`
	PasswordHash      string    `json:"passwordHash,omitempty"`
	Invited           bool      `json:"invited,omitempty"`
	CurrentStep       string    `json:"currentStep,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Load reads the session file. A missing or malformed file is reported as
// absent, never as an error: the application fails open to signed-out.
func (s *Store) Load(ctx context.Context) (sessionstore.Record, bool, error) {
	_ = ctx
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sessionstore.Record{}, false, nil
		}
		return sessionstore.Record{}, false, err
	}
	var ss storedSession
	if err := json.Unmarshal(b, &ss); err != nil || ss.ID == "" {
		// Corrupt slot: treat as signed out.
		return sessionstore.Record{}, false, nil
	}
	return fromStored(ss), true, nil
}

// Save writes the record atomically (temp file + rename).
func (s *Store) Save(ctx context.Context, rec sessionstore.Record) error {
	_ = ctx
	b, err := json.MarshalIndent(toStored(rec), "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func toStored(rec sessionstore.Record) storedSession {
	p := rec.Profile
	return storedSession{
		ID:                string(p.ID),
		Email:             p.Email,
		Name:              p.Name,
		Title:             p.Title,
		Location:          p.Location,
		LinkedinURL:       p.LinkedInURL,
		ProfilePhoto:      p.PhotoRef,
		Languages:         p.Languages,
		Bio:               p.Bio,
		PreferredCoachees: p.MonthlyCapacity,
		CalendlyURL:       p.SchedulingURL,
		IsOnboarded:       p.IsOnboarded,
		PasswordHash:      rec.PasswordHash,
		Invited:           rec.Invited,
		CurrentStep:       string(rec.CurrentStep),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func fromStored(ss storedSession) sessionstore.Record {
	return sessionstore.Record{
		Profile: domain.CoachProfile{
			ID:              domain.ProfileID(ss.ID),
			Email:           ss.Email,
			Name:            ss.Name,
			Title:           ss.Title,
			Location:        ss.Location,
			LinkedInURL:     ss.LinkedinURL,
			PhotoRef:        ss.ProfilePhoto,
			Languages:       ss.Languages,
			Bio:             ss.Bio,
			MonthlyCapacity: ss.PreferredCoachees,
			SchedulingURL:   ss.CalendlyURL,
			IsOnboarded:     ss.IsOnboarded,
			CreatedAt:       ss.CreatedAt,
			UpdatedAt:       ss.UpdatedAt,
		},
		PasswordHash: ss.PasswordHash,
		Invited:      ss.Invited,
		CurrentStep:  domain.WizardStep(ss.CurrentStep),
	}
}
