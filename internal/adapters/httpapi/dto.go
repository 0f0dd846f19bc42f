package httpapi

import (
	"encoding/base64"
	"strings"

	"github.com/oapi-codegen/nullable"

	"github.com/Beacon-Coaching/coach-portal-api/internal/app/authgate"
	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
)

// profileDTO mirrors the profile shape the portal front-end persists; the
// field names are part of the wire contract and must not drift.
type profileDTO struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	Name              string   `json:"name,omitempty"`
	Title             string   `json:"title,omitempty"`
	Location          string   `json:"location,omitempty"`
	LinkedinURL       string   `json:"linkedinUrl,omitempty"`
	ProfilePhoto      string   `json:"profilePhoto,omitempty"`
	Languages         []string `json:"languages,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	PreferredCoachees int      `json:"preferredCoachees,omitempty"`
	CalendlyURL       string   `json:"calendlyUrl,omitempty"`
	IsOnboarded       bool     `json:"isOnboarded"`
}

func profileFromDomain(p domain.CoachProfile) profileDTO {
	return profileDTO{
		ID:                string(p.ID),
		Email:             p.Email,
		Name:              p.Name,
		Title:             p.Title,
		Location:          p.Location,
		LinkedinURL:       p.LinkedInURL,
		ProfilePhoto:      p.PhotoRef,
		Languages:         append([]string(nil), p.Languages...),
		Bio:               p.Bio,
		PreferredCoachees: p.MonthlyCapacity,
		CalendlyURL:       p.SchedulingURL,
		IsOnboarded:       p.IsOnboarded,
	}
}

type sessionResponse struct {
	Surface     string      `json:"surface"`
	Profile     *profileDTO `json:"profile,omitempty"`
	Invited     bool        `json:"invited,omitempty"`
	CurrentStep string      `json:"currentStep,omitempty"`
	StepIndex   int         `json:"stepIndex,omitempty"`
	TotalSteps  int         `json:"totalSteps"`
}

func sessionResponseFromState(st authgate.SessionState, step domain.WizardStep) sessionResponse {
	out := sessionResponse{
		Surface:    string(authgate.ResolveSurface(st)),
		Invited:    st.Invited,
		TotalSteps: domain.TotalSteps,
	}
	if st.Active() {
		dto := profileFromDomain(*st.Profile)
		out.Profile = &dto
		out.CurrentStep = string(step)
		out.StepIndex = step.Index()
	}
	return out
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type invitationRequest struct {
	Email string `json:"email"`
}

type authResponse struct {
	Token   string          `json:"token,omitempty"`
	Session sessionResponse `json:"session"`
}

// profilePatchRequest is the PATCH /profile body. Tri-state fields: an
// omitted key leaves the field alone, an explicit null clears it where the
// domain allows clearing.
type profilePatchRequest struct {
	Name              nullable.Nullable[string]   `json:"name,omitempty"`
	Title             nullable.Nullable[string]   `json:"title,omitempty"`
	Location          nullable.Nullable[string]   `json:"location,omitempty"`
	Bio               nullable.Nullable[string]   `json:"bio,omitempty"`
	ProfilePhoto      nullable.Nullable[string]   `json:"profilePhoto,omitempty"`
	Languages         nullable.Nullable[[]string] `json:"languages,omitempty"`
	PreferredCoachees nullable.Nullable[int]      `json:"preferredCoachees,omitempty"`
	LinkedinURL       nullable.Nullable[string]   `json:"linkedinUrl,omitempty"`
	CalendlyURL       nullable.Nullable[string]   `json:"calendlyUrl,omitempty"`
}

func (r profilePatchRequest) toPatch() authgate.ProfilePatch {
	return authgate.ProfilePatch{
		Name:            toOptional(r.Name),
		Title:           toOptional(r.Title),
		Location:        toOptional(r.Location),
		Bio:             toOptional(r.Bio),
		PhotoRef:        toOptional(r.ProfilePhoto),
		Languages:       toOptional(r.Languages),
		MonthlyCapacity: toOptional(r.PreferredCoachees),
		LinkedInURL:     toOptional(r.LinkedinURL),
		SchedulingURL:   toOptional(r.CalendlyURL),
	}
}

func toOptional[T any](n nullable.Nullable[T]) authgate.Optional[T] {
	if !n.IsSpecified() {
		return authgate.Unspecified[T]()
	}
	if n.IsNull() {
		return authgate.Null[T]()
	}
	v, err := n.Get()
	if err != nil {
		return authgate.Null[T]()
	}
	return authgate.Some(v)
}

// advanceStepRequest carries every step's possible fields; the handler picks
// the ones the submitted step declares.
type advanceStepRequest struct {
	Password          string   `json:"password,omitempty"`
	ConfirmPassword   string   `json:"confirmPassword,omitempty"`
	LinkedinURL       string   `json:"linkedinUrl,omitempty"`
	Name              string   `json:"name,omitempty"`
	Title             string   `json:"title,omitempty"`
	Location          string   `json:"location,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Languages         []string `json:"languages,omitempty"`
	Photo             string   `json:"photo,omitempty"` // data URI
	PreferredCoachees int      `json:"preferredCoachees,omitempty"`
	CalendlyURL       string   `json:"calendlyUrl,omitempty"`
}

type advanceStepResponse struct {
	Profile       profileDTO `json:"profile"`
	CurrentStep   string     `json:"currentStep"`
	StepIndex     int        `json:"stepIndex"`
	TotalSteps    int        `json:"totalSteps"`
	ImportPending bool       `json:"importPending,omitempty"`
}

type backResponse struct {
	CurrentStep string `json:"currentStep"`
	StepIndex   int    `json:"stepIndex"`
	TotalSteps  int    `json:"totalSteps"`
}

type onboardingResponse struct {
	CurrentStep       string   `json:"currentStep"`
	StepIndex         int      `json:"stepIndex"`
	TotalSteps        int      `json:"totalSteps"`
	BioCharacterLimit int      `json:"bioCharacterLimit"`
	LocationMode      string   `json:"locationMode"`
	AllowedLocations  []string `json:"allowedLocations,omitempty"`
}

// parseDataURI decodes a "data:<mediatype>;base64,<payload>" string. The
// upload endpoint accepts only this form; multipart is out of scope for the
// single-coach portal.
func parseDataURI(s string) (data []byte, contentType string, ok bool) {
	const scheme = "data:"
	if !strings.HasPrefix(s, scheme) {
		return nil, "", false
	}
	rest := strings.TrimPrefix(s, scheme)
	meta, payload, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return data, contentType, true
}
