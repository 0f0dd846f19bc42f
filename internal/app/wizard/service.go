package wizard

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
	clockport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/clock"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/photostore"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/profileimport"
	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

// Completer marks onboarding complete. Implemented by the auth gate; the
// wizard triggers the transition but does not own the flag.
type Completer interface {
	CompleteOnboarding(ctx context.Context) error
}

// Service is the wizard step sequencer. It resolves the current step, gates
// forward navigation on per-step validation, merges each step's declared
// fields into the profile, and drives the terminal transition.
//
// User actions are processed to completion one at a time: the service mutex
// serializes submissions, navigation, and import resolutions.
type Service struct {
	store     sessionstore.Store
	clk       clockport.Clock
	importer  profileimport.Importer
	photos    photostore.Store
	completer Completer
	log       *zap.Logger
	cfg       Config

	mu sync.Mutex
	// epoch invalidates pending import tickets on every navigation.
	epoch uint64
}

func NewService(
	store sessionstore.Store,
	clk clockport.Clock,
	importer profileimport.Importer,
	photos photostore.Store,
	completer Completer,
	cfg Config,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		clk:       clk,
		importer:  importer,
		photos:    photos,
		completer: completer,
		log:       log,
		cfg:       cfg,
	}
}

// Config exposes the validation tuning so the presentation layer can render
// limits (bio counter, location options) without duplicating them.
func (s *Service) Config() Config { return s.cfg }

// CurrentStep is the single authoritative wizard position for a session
// record. Views must use this rather than inferring position from which
// fields are populated.
func CurrentStep(rec sessionstore.Record) domain.WizardStep {
	if rec.Profile.IsOnboarded {
		return domain.StepComplete
	}
	if rec.CurrentStep.Valid() {
		return rec.CurrentStep
	}
	return domain.StepSetPassword
}

// Advance runs step's validator against in and, on success, merges exactly
// that step's declared fields, persists, and moves to the successor. On
// validation failure the wizard remains at step and the specific violated
// rule is surfaced. At the terminal step it triggers the onboarding-complete
// transition instead.
func (s *Service) Advance(ctx context.Context, step domain.WizardStep, in StepInput) (AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !step.Valid() {
		return AdvanceResult{}, &Error{Status: 422, Code: "UNKNOWN_STEP", Message: "unknown wizard step"}
	}

	rec, ok, err := s.store.Load(ctx)
	if err != nil {
		return AdvanceResult{}, err
	}
	if !ok {
		return AdvanceResult{}, &Error{Status: 401, Code: "NO_ACTIVE_SESSION", Message: "no active session"}
	}
	if rec.Profile.IsOnboarded {
		return AdvanceResult{}, &Error{Status: 409, Code: "ONBOARDING_COMPLETE", Message: "onboarding is already complete"}
	}
	if cur := CurrentStep(rec); step != cur {
		return AdvanceResult{}, &Error{
			Status:  409,
			Code:    "STEP_OUT_OF_SEQUENCE",
			Message: "step submitted out of sequence",
			Details: map[string]any{"expected": string(cur)},
		}
	}

	if step == domain.StepComplete {
		return s.complete(ctx)
	}

	var ticket *ImportTicket
	switch step {
	case domain.StepSetPassword:
		pw := in.Password
		if pw == nil {
			return AdvanceResult{}, validationError("password", "missing submission")
		}
		if verr := validateSetPassword(*pw); verr != nil {
			return AdvanceResult{}, verr
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw.Password), bcrypt.DefaultCost)
		if err != nil {
			return AdvanceResult{}, err
		}
		rec.PasswordHash = string(hash)

	case domain.StepLinkedInImport:
		li := in.LinkedIn
		if li == nil {
			return AdvanceResult{}, validationError("linkedinUrl", "missing submission")
		}
		if verr := validateLinkedIn(*li); verr != nil {
			return AdvanceResult{}, verr
		}
		rec.Profile.LinkedInURL = strings.TrimSpace(li.ProfileURL)

	case domain.StepReviewDetails:
		rv := in.Review
		if rv == nil {
			return AdvanceResult{}, validationError("name", "missing submission")
		}
		if verr := validateReview(*rv, s.cfg); verr != nil {
			return AdvanceResult{}, verr
		}
		rec.Profile.Name = domain.NormalizeHumanName(rv.Name)
		rec.Profile.Title = strings.TrimSpace(rv.Title)
		rec.Profile.Location = strings.TrimSpace(rv.Location)
		rec.Profile.Bio = rv.Bio
		rec.Profile.Languages = normalizeLanguages(rv.Languages)

	case domain.StepUploadPhoto:
		ph := in.Photo
		if ph == nil {
			ph = &PhotoInput{}
		}
		if verr := validatePhoto(*ph); verr != nil {
			return AdvanceResult{}, verr
		}
		if len(ph.ImageData) > 0 {
			ref, err := s.photos.Put(ctx, ph.ImageData, ph.ContentType)
			if err != nil {
				return AdvanceResult{}, err
			}
			rec.Profile.PhotoRef = ref
		}

	case domain.StepAvailability:
		av := in.Availability
		if av == nil {
			return AdvanceResult{}, validationError("calendlyUrl", "missing submission")
		}
		if verr := validateAvailability(*av); verr != nil {
			return AdvanceResult{}, verr
		}
		rec.Profile.MonthlyCapacity = domain.ClampCapacity(av.MonthlyCapacity)
		rec.Profile.SchedulingURL = strings.TrimSpace(av.SchedulingURL)
	}

	next, _ := step.Successor()
	rec.CurrentStep = next
	rec.Profile.UpdatedAt = s.clk.Now()
	if err := s.store.Save(ctx, rec); err != nil {
		return AdvanceResult{}, err
	}

	s.epoch++
	if step == domain.StepLinkedInImport {
		ticket = &ImportTicket{ProfileURL: rec.Profile.LinkedInURL, epoch: s.epoch}
	}

	return AdvanceResult{
		Profile: domain.CloneProfile(rec.Profile),
		Next:    next,
		Import:  ticket,
	}, nil
}

// Back moves one step backward. It is pure navigation: never validates,
// never discards already-merged data. Illegal only from the first step.
// Any pending import ticket is invalidated.
func (s *Service) Back(ctx context.Context) (domain.WizardStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &Error{Status: 401, Code: "NO_ACTIVE_SESSION", Message: "no active session"}
	}
	if rec.Profile.IsOnboarded {
		return "", &Error{Status: 409, Code: "ONBOARDING_COMPLETE", Message: "onboarding is already complete"}
	}

	cur := CurrentStep(rec)
	pred, ok := cur.Predecessor()
	if !ok {
		return "", &Error{Status: 409, Code: "AT_FIRST_STEP", Message: "cannot navigate back from the first step"}
	}

	rec.CurrentStep = pred
	if err := s.store.Save(ctx, rec); err != nil {
		return "", err
	}
	s.epoch++
	return pred, nil
}

// ResolveImport runs the external profile import for t and merges the result
// into the profile, unless the user has navigated since the ticket was
// issued. A late resolution is discarded, never applied to an abandoned or
// already-advanced state. Callers typically run this on its own goroutine.
func (s *Service) ResolveImport(ctx context.Context, t *ImportTicket) error {
	if t == nil || s.importer == nil {
		return nil
	}

	prev, err := s.importer.Fetch(ctx, t.ProfileURL)
	if err != nil {
		s.log.Warn("profile import failed", zap.String("url", t.ProfileURL), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.epoch != s.epoch {
		s.log.Debug("discarding stale profile import", zap.String("url", t.ProfileURL))
		return nil
	}
	rec, ok, err := s.store.Load(ctx)
	if err != nil || !ok {
		return err
	}
	if CurrentStep(rec) != domain.StepReviewDetails {
		return nil
	}

	if prev.Name != "" {
		rec.Profile.Name = domain.NormalizeHumanName(prev.Name)
	}
	if prev.Title != "" {
		rec.Profile.Title = prev.Title
	}
	if prev.Location != "" {
		rec.Profile.Location = prev.Location
	}
	if prev.PhotoRef != "" {
		rec.Profile.PhotoRef = prev.PhotoRef
	}
	rec.Profile.UpdatedAt = s.clk.Now()
	return s.store.Save(ctx, rec)
}

func (s *Service) complete(ctx context.Context) (AdvanceResult, error) {
	if err := s.completer.CompleteOnboarding(ctx); err != nil {
		return AdvanceResult{}, err
	}
	s.epoch++

	rec, ok, err := s.store.Load(ctx)
	if err != nil || !ok {
		return AdvanceResult{Next: domain.StepComplete}, err
	}
	return AdvanceResult{
		Profile: domain.CloneProfile(rec.Profile),
		Next:    domain.StepComplete,
	}, nil
}
