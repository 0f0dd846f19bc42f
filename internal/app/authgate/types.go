package authgate

import (
	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// ProfilePatch is a partial update to the active profile. Identity fields
// (id, email) are immutable and deliberately absent.
type ProfilePatch struct {
	Name     Optional[string] // cannot be null
	Title    Optional[string]
	Location Optional[string]
	Bio      Optional[string]
	// PhotoRef may be null to clear the photo.
	PhotoRef        Optional[string]
	Languages       Optional[[]string] // cannot be null; duplicates dropped
	MonthlyCapacity Optional[int]      // clamped into the capacity range
	LinkedInURL     Optional[string]
	SchedulingURL   Optional[string]
}

// DemoIdentity is the configuration-provided credential that bootstraps a
// fully-populated, already-onboarded profile at sign-in.
type DemoIdentity struct {
	Email    string
	Password string
}

// SessionState is the auth gate's read model: the optional active profile
// plus session-scoped flags.
type SessionState struct {
	// Profile is nil when signed out.
	Profile     *domain.CoachProfile
	Invited     bool
	CurrentStep domain.WizardStep
}

func (s SessionState) Active() bool { return s.Profile != nil }

// Surface is the single resolved destination for a visitor.
type Surface string

const (
	SurfaceSignIn     Surface = "signin"
	SurfaceOnboarding Surface = "onboarding"
	SurfaceDashboard  Surface = "dashboard"
)

// ResolveSurface maps every SessionState to exactly one surface. It is pure:
// the presentation layer performs the actual navigation.
func ResolveSurface(s SessionState) Surface {
	switch {
	case !s.Active():
		return SurfaceSignIn
	case !s.Profile.IsOnboarded:
		return SurfaceOnboarding
	default:
		return SurfaceDashboard
	}
}
