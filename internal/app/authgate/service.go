package authgate

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
	clockport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/clock"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/mailer"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

// Service is the auth gate: it owns sign-in/sign-out, invitation bootstrap,
// profile updates, and the onboarding-complete transition. It never touches
// storage except through the session store port.
type Service struct {
	store  sessionstore.Store
	clk    clockport.Clock
	mail   mailer.Mailer
	log    *zap.Logger
	demo   DemoIdentity
	invite InviteOptions

	newProfileID func() domain.ProfileID
}

// InviteOptions configures invitation delivery.
type InviteOptions struct {
	// PortalBaseURL is used to build the password-setup link in the invitation.
	PortalBaseURL string
}

func NewService(store sessionstore.Store, clk clockport.Clock, mail mailer.Mailer, demo DemoIdentity, invite InviteOptions, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		clk:    clk,
		mail:   mail,
		log:    log,
		demo:   demo,
		invite: invite,
		newProfileID: func() domain.ProfileID {
			return domain.ProfileID(uuid.NewString())
		},
	}
}

// Current loads the session state. Storage failures fail open to signed-out.
func (s *Service) Current(ctx context.Context) SessionState {
	rec, ok, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn("session load failed; treating as signed out", zap.Error(err))
		return SessionState{}
	}
	if !ok {
		return SessionState{}
	}
	return stateFromRecord(rec)
}

// SignIn validates a credential against the demo identity or the stored
// invitation profile's password hash. On demo success it bootstraps a
// fully-populated, already-onboarded profile and persists it.
func (s *Service) SignIn(ctx context.Context, email, password string) (SessionState, error) {
	email = strings.TrimSpace(email)

	if strings.EqualFold(email, s.demo.Email) && password == s.demo.Password {
		rec := s.demoRecord()
		if err := s.store.Save(ctx, rec); err != nil {
			return SessionState{}, err
		}
		return stateFromRecord(rec), nil
	}

	rec, ok, err := s.store.Load(ctx)
	if err == nil && ok && rec.PasswordHash != "" && strings.EqualFold(rec.Profile.Email, email) {
		if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) == nil {
			return stateFromRecord(rec), nil
		}
	}

	return SessionState{}, &Error{
		Status:  401,
		Code:    "INVALID_CREDENTIAL",
		Message: "email or password is incorrect",
	}
}

// StartInvitation creates a fresh profile keyed by email with the invitation
// flag set and persists it. It always succeeds for well-formed input; the
// invitation email is best-effort.
func (s *Service) StartInvitation(ctx context.Context, email string) (SessionState, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return SessionState{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid email",
			Details: map[string]any{"email": "must be non-empty"},
		}
	}

	now := s.clk.Now()
	rec := sessionstore.Record{
		Profile: domain.CoachProfile{
			ID:        s.newProfileID(),
			Email:     email,
			Languages: []string{domain.DefaultLanguage},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Invited:     true,
		CurrentStep: domain.StepSetPassword,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return SessionState{}, err
	}

	if s.mail != nil {
		inv := mailer.Invitation{
			Email:    email,
			SetupURL: strings.TrimRight(s.invite.PortalBaseURL, "/") + "/onboarding/set-password?email=" + email,
		}
		if err := s.mail.SendInvitation(ctx, inv); err != nil {
			s.log.Warn("invitation email not delivered", zap.String("email", email), zap.Error(err))
		}
	}

	return stateFromRecord(rec), nil
}

// SignOut clears the session store unconditionally.
func (s *Service) SignOut(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// ApplyUpdate merges patch into the current profile and persists. With no
// active session it is a no-op, not an error.
func (s *Service) ApplyUpdate(ctx context.Context, patch ProfilePatch) (SessionState, error) {
	rec, ok, err := s.store.Load(ctx)
	if err != nil {
		return SessionState{}, err
	}
	if !ok {
		return SessionState{}, nil
	}

	if err := applyPatch(&rec.Profile, patch); err != nil {
		return SessionState{}, err
	}
	rec.Profile.UpdatedAt = s.clk.Now()
	if err := s.store.Save(ctx, rec); err != nil {
		return SessionState{}, err
	}
	return stateFromRecord(rec), nil
}

// CompleteOnboarding flips IsOnboarded to true and persists. The transition
// is monotonic and idempotent: a second call leaves the record unchanged.
// Calling it with no active session is a contract violation; it is logged and
// reported as ErrNoActiveSession with no state change.
func (s *Service) CompleteOnboarding(ctx context.Context) error {
	rec, ok, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Error("contract violation: CompleteOnboarding with no active session")
		return ErrNoActiveSession
	}
	if rec.Profile.IsOnboarded {
		return nil
	}
	rec.Profile.IsOnboarded = true
	rec.Invited = false
	rec.CurrentStep = domain.StepComplete
	rec.Profile.UpdatedAt = s.clk.Now()
	return s.store.Save(ctx, rec)
}

func (s *Service) demoRecord() sessionstore.Record {
	now := s.clk.Now()
	return sessionstore.Record{
		Profile: domain.CoachProfile{
			ID:              s.newProfileID(),
			Email:           s.demo.Email,
			Name:            "Sarah Johnson",
			Title:           "Senior Career Coach",
			Location:        "New York, NY",
			LinkedInURL:     "https://linkedin.com/in/sarah-johnson",
			Languages:       []string{"English", "Spanish"},
			Bio:             "Experienced career coach specializing in tech transitions.",
			MonthlyCapacity: domain.MaxMonthlyCapacity,
			SchedulingURL:   "https://calendly.com/sarah-johnson",
			IsOnboarded:     true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		CurrentStep: domain.StepComplete,
	}
}

func applyPatch(p *domain.CoachProfile, patch ProfilePatch) error {
	if patch.Name.IsSpecified() {
		if patch.Name.IsNull() {
			return validationError("name", "cannot be null")
		}
		name := domain.NormalizeHumanName(patch.Name.Value())
		if name == "" {
			return validationError("name", "must be non-empty")
		}
		p.Name = name
	}
	if patch.Title.IsSpecified() {
		if patch.Title.IsNull() {
			p.Title = ""
		} else {
			p.Title = strings.TrimSpace(patch.Title.Value())
		}
	}
	if patch.Location.IsSpecified() {
		if patch.Location.IsNull() {
			p.Location = ""
		} else {
			p.Location = strings.TrimSpace(patch.Location.Value())
		}
	}
	if patch.Bio.IsSpecified() {
		if patch.Bio.IsNull() {
			p.Bio = ""
		} else {
			p.Bio = patch.Bio.Value()
		}
	}
	if patch.PhotoRef.IsSpecified() {
		if patch.PhotoRef.IsNull() {
			p.PhotoRef = ""
		} else {
			p.PhotoRef = patch.PhotoRef.Value()
		}
	}
	if patch.Languages.IsSpecified() {
		if patch.Languages.IsNull() {
			return validationError("languages", "cannot be null")
		}
		langs := dedupeLanguages(patch.Languages.Value())
		if len(langs) == 0 {
			return validationError("languages", "must contain at least one language")
		}
		p.Languages = langs
	}
	if patch.MonthlyCapacity.IsSpecified() {
		if patch.MonthlyCapacity.IsNull() {
			return validationError("monthlyCapacity", "cannot be null")
		}
		p.MonthlyCapacity = domain.ClampCapacity(patch.MonthlyCapacity.Value())
	}
	if patch.LinkedInURL.IsSpecified() && !patch.LinkedInURL.IsNull() {
		p.LinkedInURL = strings.TrimSpace(patch.LinkedInURL.Value())
	}
	if patch.SchedulingURL.IsSpecified() && !patch.SchedulingURL.IsNull() {
		p.SchedulingURL = strings.TrimSpace(patch.SchedulingURL.Value())
	}
	return nil
}

func dedupeLanguages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = domain.NormalizeLanguage(l)
		if l == "" || domain.ContainsLanguage(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func validationError(field, rule string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: rule},
	}
}

func stateFromRecord(rec sessionstore.Record) SessionState {
	p := domain.CloneProfile(rec.Profile)
	return SessionState{
		Profile:     &p,
		Invited:     rec.Invited,
		CurrentStep: rec.CurrentStep,
	}
}
