package itest

import (
	"net/http"
	"strings"
	"testing"
)

type authPayload struct {
	Token   string `json:"token"`
	Session struct {
		Surface     string `json:"surface"`
		Invited     bool   `json:"invited"`
		CurrentStep string `json:"currentStep"`
		StepIndex   int    `json:"stepIndex"`
		TotalSteps  int    `json:"totalSteps"`
		Profile     *struct {
			Email             string   `json:"email"`
			Name              string   `json:"name"`
			Languages         []string `json:"languages"`
			Bio               string   `json:"bio"`
			PreferredCoachees int      `json:"preferredCoachees"`
			CalendlyURL       string   `json:"calendlyUrl"`
			IsOnboarded       bool     `json:"isOnboarded"`
		} `json:"profile"`
	} `json:"session"`
}

type advancePayload struct {
	CurrentStep   string `json:"currentStep"`
	StepIndex     int    `json:"stepIndex"`
	ImportPending bool   `json:"importPending"`
	Profile       struct {
		Name              string `json:"name"`
		PreferredCoachees int    `json:"preferredCoachees"`
		IsOnboarded       bool   `json:"isOnboarded"`
	} `json:"profile"`
}

func TestOnboarding_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)

			// Missing auth => 401 for session endpoints.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/session", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
			}

			// Invitation bootstraps a session and a token.
			var tok string
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/auth/invitations", "",
					map[string]any{"email": "new@x.com"})
				if status != http.StatusOK {
					t.Fatalf("invitation status=%d body=%s", status, string(body))
				}
				got := mustUnmarshal[authPayload](t, body)
				if got.Token == "" || got.Session.Surface != "onboarding" || !got.Session.Invited {
					t.Fatalf("invitation payload=%s", string(body))
				}
				tok = got.Token
			}

			// Walk the wizard front to back.
			steps := []struct {
				path string
				body map[string]any
				next string
			}{
				{"/onboarding/steps/set_password",
					map[string]any{"password": "longenough1", "confirmPassword": "longenough1"},
					"linkedin_import"},
				{"/onboarding/steps/linkedin_import",
					map[string]any{"linkedinUrl": "https://linkedin.com/in/sarah-johnson"},
					"review_details"},
				{"/onboarding/steps/review_details",
					map[string]any{
						"name": "Sarah Johnson", "title": "Senior Career Coach",
						"location": "New York, NY", "languages": []string{"English", "German"},
						"bio": strings.Repeat("a", 600),
					},
					"upload_photo"},
				{"/onboarding/steps/upload_photo", map[string]any{}, "availability"},
				{"/onboarding/steps/availability",
					map[string]any{"preferredCoachees": 500, "calendlyUrl": "https://calendly.com/sarah"},
					"complete"},
			}
			for _, step := range steps {
				status, body, _ := srv.doJSON(t, http.MethodPost, step.path, tok, step.body)
				if status != http.StatusOK {
					t.Fatalf("%s: status=%d body=%s", step.path, status, string(body))
				}
				got := mustUnmarshal[advancePayload](t, body)
				if got.CurrentStep != step.next {
					t.Fatalf("%s: currentStep=%q want=%q", step.path, got.CurrentStep, step.next)
				}
			}

			// Terminal step flips the onboarded flag.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/onboarding/steps/complete", tok, map[string]any{})
				if status != http.StatusOK {
					t.Fatalf("complete status=%d body=%s", status, string(body))
				}
				got := mustUnmarshal[advancePayload](t, body)
				if !got.Profile.IsOnboarded {
					t.Fatalf("profile not onboarded: %s", string(body))
				}
				if got.Profile.PreferredCoachees != 30 {
					t.Fatalf("capacity not clamped: %s", string(body))
				}
			}

			// Session now routes to the dashboard.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/session", tok, nil)
				if status != http.StatusOK {
					t.Fatalf("session status=%d body=%s", status, string(body))
				}
				got := mustUnmarshal[authPayload](t, body)
				if got.Session.Surface != "dashboard" {
					t.Fatalf("surface=%q", got.Session.Surface)
				}
			}

			// The completed wizard rejects further submissions.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/onboarding/steps/availability", tok,
					map[string]any{"preferredCoachees": 5, "calendlyUrl": "https://calendly.com/x"})
				requireErrorCode(t, status, body, http.StatusConflict, "ONBOARDING_COMPLETE")
			}

			// Sign out clears the slot; the visitor is routed back to sign-in.
			{
				status, _, _ := srv.doJSON(t, http.MethodPost, "/auth/signout", tok, nil)
				if status != http.StatusNoContent {
					t.Fatalf("signout status=%d", status)
				}
				status, body, _ := srv.doJSON(t, http.MethodGet, "/session", tok, nil)
				if status != http.StatusOK {
					t.Fatalf("session status=%d body=%s", status, string(body))
				}
				got := mustUnmarshal[authPayload](t, body)
				if got.Session.Surface != "signin" || got.Session.Profile != nil {
					t.Fatalf("session after signout=%s", string(body))
				}
			}
		})
	}
}
