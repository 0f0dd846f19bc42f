package wizard

import (
	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
)

// LocationMode selects how the review step validates the location field.
// Observed deployments differ here, so it is configuration, not a constant.
type LocationMode string

const (
	LocationFreeText     LocationMode = "free_text"
	LocationFixedOptions LocationMode = "fixed_options"
)

// Config is the wizard's validation tuning.
type Config struct {
	// BioCharacterLimit bounds the biography length (in runes).
	BioCharacterLimit int
	LocationMode      LocationMode
	// AllowedLocations is consulted only in LocationFixedOptions mode.
	AllowedLocations []string
}

// DefaultBioCharacterLimit matches the production deployment.
const DefaultBioCharacterLimit = 600

func (c Config) bioLimit() int {
	if c.BioCharacterLimit > 0 {
		return c.BioCharacterLimit
	}
	return DefaultBioCharacterLimit
}

// Per-step submissions. Each step writes only its declared profile fields.

type SetPasswordInput struct {
	Password string
	Confirm  string
}

type LinkedInInput struct {
	ProfileURL string
}

type ReviewInput struct {
	Name      string
	Title     string
	Location  string
	Bio       string
	Languages []string
}

// PhotoInput is optional: zero-value input advances with the photo unchanged.
type PhotoInput struct {
	ImageData   []byte
	ContentType string
}

type AvailabilityInput struct {
	MonthlyCapacity int
	SchedulingURL   string
}

// StepInput is the submission payload for Advance. Exactly the field matching
// the submitted step is consulted; the rest are ignored.
type StepInput struct {
	Password     *SetPasswordInput
	LinkedIn     *LinkedInInput
	Review       *ReviewInput
	Photo        *PhotoInput
	Availability *AvailabilityInput
}

// ImportTicket identifies one pending external profile import. A ticket is
// invalidated by any subsequent navigation (advance, back, sign-out), so a
// late resolution can never write into a state the user has left.
type ImportTicket struct {
	ProfileURL string
	epoch      uint64
}

// AdvanceResult reports the state after a successful transition.
type AdvanceResult struct {
	Profile domain.CoachProfile
	Next    domain.WizardStep
	// Import is non-nil after the LinkedIn step: the caller resolves it
	// asynchronously via ResolveImport.
	Import *ImportTicket
}
