package domain

import "time"

// Capacity bounds for the monthly coachee load. The persisted value must
// always lie inside this range; inputs outside it are clamped on write.
const (
	MinMonthlyCapacity = 1
	MaxMonthlyCapacity = 30
)

// CoachProfile is the domain representation of one coach's evolving profile.
//
// ID and Email are immutable once set. All other fields accumulate one wizard
// step at a time until IsOnboarded flips to true.
type CoachProfile struct {
	ID    ProfileID
	Email string

	Name     string
	Title    string
	Location string

	// PhotoRef is an opaque storable URI for the profile photo; empty means no photo.
	PhotoRef string

	// Languages is an ordered list of spoken languages, no duplicates.
	// It is seeded with DefaultLanguage and may never become empty once
	// the review step has been completed.
	Languages []string

	Bio             string
	MonthlyCapacity int

	// LinkedInURL is the profile URL submitted at the import step.
	LinkedInURL string
	// SchedulingURL is the external scheduling-link URI (stored, never called).
	SchedulingURL string

	// IsOnboarded transitions false->true exactly once and never reverts
	// while a session is active.
	IsOnboarded bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultLanguage seeds a fresh profile's language list.
const DefaultLanguage = "English"

// ClampCapacity forces a capacity input into [MinMonthlyCapacity, MaxMonthlyCapacity].
func ClampCapacity(n int) int {
	if n < MinMonthlyCapacity {
		return MinMonthlyCapacity
	}
	if n > MaxMonthlyCapacity {
		return MaxMonthlyCapacity
	}
	return n
}

// CloneProfile returns a deep copy so callers can't mutate shared state
// through the Languages slice.
func CloneProfile(p CoachProfile) CoachProfile {
	out := p
	if p.Languages != nil {
		out.Languages = append([]string(nil), p.Languages...)
	}
	return out
}
