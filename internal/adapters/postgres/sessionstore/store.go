package sessionstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

// Store is a Postgres implementation of sessionstore.Store.
//
// The portal holds exactly one session, so the table is a single row keyed by
// a fixed slot id; Save upserts it.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Schema creates the session table. Applied by the entrypoint and the test
// harness; idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS coach_session (
	slot              smallint PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
	profile_id        text NOT NULL,
	email             text NOT NULL,
	name              text NOT NULL DEFAULT '',
	title             text NOT NULL DEFAULT '',
	location          text NOT NULL DEFAULT '',
	linkedin_url      text NOT NULL DEFAULT '',
	photo_ref         text NOT NULL DEFAULT '',
	languages         text[] NOT NULL DEFAULT '{}',
	bio               text NOT NULL DEFAULT '',
	monthly_capacity  integer NOT NULL DEFAULT 0,
	scheduling_url    text NOT NULL DEFAULT '',
	is_onboarded      boolean NOT NULL DEFAULT false,
	password_hash     text NOT NULL DEFAULT '',
	invited           boolean NOT NULL DEFAULT false,
	current_step      text NOT NULL DEFAULT '',
	created_at        timestamptz NOT NULL,
	updated_at        timestamptz NOT NULL
)`

func (s *Store) Load(ctx context.Context) (sessionstore.Record, bool, error) {
	if s.pool == nil {
		return sessionstore.Record{}, false, errors.New("nil postgres pool")
	}
	var (
		rec   sessionstore.Record
		langs []string
		step  string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT profile_id, email, name, title, location, linkedin_url, photo_ref,
		       languages, bio, monthly_capacity, scheduling_url, is_onboarded,
		       password_hash, invited, current_step, created_at, updated_at
		FROM coach_session
		WHERE slot = 1
	`).Scan(
		&rec.Profile.ID,
		&rec.Profile.Email,
		&rec.Profile.Name,
		&rec.Profile.Title,
		&rec.Profile.Location,
		&rec.Profile.LinkedInURL,
		&rec.Profile.PhotoRef,
		&langs,
		&rec.Profile.Bio,
		&rec.Profile.MonthlyCapacity,
		&rec.Profile.SchedulingURL,
		&rec.Profile.IsOnboarded,
		&rec.PasswordHash,
		&rec.Invited,
		&step,
		&rec.Profile.CreatedAt,
		&rec.Profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionstore.Record{}, false, nil
		}
		return sessionstore.Record{}, false, err
	}
	if rec.Profile.ID == "" {
		// Corrupt slot: treat as signed out.
		return sessionstore.Record{}, false, nil
	}
	if len(langs) > 0 {
		rec.Profile.Languages = langs
	}
	rec.CurrentStep = domain.WizardStep(step)
	rec.Profile.CreatedAt = rec.Profile.CreatedAt.UTC()
	rec.Profile.UpdatedAt = rec.Profile.UpdatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Save(ctx context.Context, rec sessionstore.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	langs := rec.Profile.Languages
	if langs == nil {
		langs = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO coach_session (
			slot, profile_id, email, name, title, location, linkedin_url, photo_ref,
			languages, bio, monthly_capacity, scheduling_url, is_onboarded,
			password_hash, invited, current_step, created_at, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (slot) DO UPDATE SET
			profile_id = EXCLUDED.profile_id,
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			title = EXCLUDED.title,
			location = EXCLUDED.location,
			linkedin_url = EXCLUDED.linkedin_url,
			photo_ref = EXCLUDED.photo_ref,
			languages = EXCLUDED.languages,
			bio = EXCLUDED.bio,
			monthly_capacity = EXCLUDED.monthly_capacity,
			scheduling_url = EXCLUDED.scheduling_url,
			is_onboarded = EXCLUDED.is_onboarded,
			password_hash = EXCLUDED.password_hash,
			invited = EXCLUDED.invited,
			current_step = EXCLUDED.current_step,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`,
		string(rec.Profile.ID),
		rec.Profile.Email,
		rec.Profile.Name,
		rec.Profile.Title,
		rec.Profile.Location,
		rec.Profile.LinkedInURL,
		rec.Profile.PhotoRef,
		langs,
		rec.Profile.Bio,
		rec.Profile.MonthlyCapacity,
		rec.Profile.SchedulingURL,
		rec.Profile.IsOnboarded,
		rec.PasswordHash,
		rec.Invited,
		string(rec.CurrentStep),
		rec.Profile.CreatedAt.UTC(),
		rec.Profile.UpdatedAt.UTC(),
	)
	return err
}

func (s *Store) Clear(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM coach_session WHERE slot = 1`)
	return err
}
