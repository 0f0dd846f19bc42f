package wizard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

func validateSetPassword(in SetPasswordInput) *Error {
	if len(in.Password) < MinPasswordLength {
		return validationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if in.Password != in.Confirm {
		return validationError("confirmPassword", "must match password")
	}
	return nil
}

func validateLinkedIn(in LinkedInInput) *Error {
	if strings.TrimSpace(in.ProfileURL) == "" {
		return validationError("linkedinUrl", "must be non-empty")
	}
	if !isURL(in.ProfileURL) {
		return validationError("linkedinUrl", "must be a valid URL")
	}
	return nil
}

func validateReview(in ReviewInput, cfg Config) *Error {
	if domain.NormalizeHumanName(in.Name) == "" {
		return validationError("name", "must be non-empty")
	}
	switch cfg.LocationMode {
	case LocationFixedOptions:
		if !containsFold(cfg.AllowedLocations, strings.TrimSpace(in.Location)) {
			return validationError("location", "must be one of the allowed locations")
		}
	default:
		if strings.TrimSpace(in.Location) == "" {
			return validationError("location", "must be non-empty")
		}
	}
	langs := normalizeLanguages(in.Languages)
	if len(langs) == 0 {
		return validationError("languages", "must contain at least one language")
	}
	if strings.TrimSpace(in.Bio) == "" {
		return validationError("bio", "must be non-empty")
	}
	if limit := cfg.bioLimit(); bioLength(in.Bio) > limit {
		return validationError("bio", fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}

func validatePhoto(in PhotoInput) *Error {
	if len(in.ImageData) == 0 {
		return nil
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return validationError("photo", "must be an image")
	}
	return nil
}

func validateAvailability(in AvailabilityInput) *Error {
	// Capacity is clamped on merge, not rejected here.
	if strings.TrimSpace(in.SchedulingURL) == "" {
		return validationError("calendlyUrl", "must be non-empty")
	}
	if !isURL(in.SchedulingURL) {
		return validationError("calendlyUrl", "must be a valid URL")
	}
	return nil
}

// SplitBio splits bio into the portion within limit and the overflow beyond
// it, counted in runes. The valid prefix always has length min(len, limit);
// nothing is truncated silently, the caller renders the overflow distinctly.
func SplitBio(bio string, limit int) (valid, overflow string) {
	if limit <= 0 {
		limit = DefaultBioCharacterLimit
	}
	runes := []rune(bio)
	if len(runes) <= limit {
		return bio, ""
	}
	return string(runes[:limit]), string(runes[limit:])
}

func bioLength(bio string) int {
	return len([]rune(bio))
}

// AddLanguage appends lang unless it is blank or already present
// (case-insensitive); duplicates are a no-op, not an error.
func AddLanguage(list []string, lang string) []string {
	lang = domain.NormalizeLanguage(lang)
	if lang == "" || domain.ContainsLanguage(list, lang) {
		return list
	}
	return append(list, lang)
}

// RemoveLanguage removes lang from list. Removing the last remaining language
// is rejected: the set never becomes empty.
func RemoveLanguage(list []string, lang string) ([]string, *Error) {
	if len(list) <= 1 {
		return list, validationError("languages", "must contain at least one language")
	}
	out := make([]string, 0, len(list))
	for _, l := range list {
		if !strings.EqualFold(l, lang) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return list, validationError("languages", "must contain at least one language")
	}
	return out, nil
}

func normalizeLanguages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		out = AddLanguage(out, l)
	}
	return out
}

func isURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
