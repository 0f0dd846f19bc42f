package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memclock "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/clock"
	memmailer "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/mailer"
	memphotos "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/photostore"
	memstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/sessionstore"
	"github.com/Beacon-Coaching/coach-portal-api/internal/adapters/linkedin"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/authgate"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/wizard"
	"github.com/Beacon-Coaching/coach-portal-api/internal/platform/token"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memstore.NewStore()
	clk := memclock.NewManualClock(time.Unix(1700000000, 0).UTC())
	iss := token.NewIssuer([]byte("test-secret"), time.Hour, clk)

	auth := authgate.NewService(store, clk, memmailer.NewCapture(),
		authgate.DemoIdentity{Email: "coach@example.com", Password: "password"},
		authgate.InviteOptions{PortalBaseURL: "https://portal.example.com"}, nil)
	wiz := wizard.NewService(store, clk, linkedin.NewImporter(0), memphotos.NewStore(), auth, wizard.Config{}, nil)

	srv := NewServer(auth, wiz, iss, nil)
	return NewRouter(srv, NewAuthMiddleware(iss))
}

func doJSON(t *testing.T, h http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = bytes.NewBufferString("{}")
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signInDemo(t *testing.T, h http.Handler) (string, authResponse) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/signin", "", `{"email":"coach@example.com","password":"password"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token")
	}
	return resp.Token, resp
}

func startInvitation(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/invitations", "", `{"email":"`+email+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("invitation status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Token
}

func TestSignIn_Demo_ReturnsTokenAndDashboardSurface(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	_, resp := signInDemo(t, h)
	if resp.Session.Surface != "dashboard" {
		t.Fatalf("surface=%q", resp.Session.Surface)
	}
	if resp.Session.Profile == nil || resp.Session.Profile.Name != "Sarah Johnson" {
		t.Fatalf("profile=%+v", resp.Session.Profile)
	}
}

func TestSignIn_BadCredential_401Envelope(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/signin", "", `{"email":"coach@example.com","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "INVALID_CREDENTIAL" {
		t.Fatalf("code=%q", er.Error.Code)
	}
	if er.Error.RequestID == "" {
		t.Fatalf("expected requestId in error envelope")
	}
}

func TestGetSession_RequiresToken(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestInvitation_ThenSessionShowsOnboarding(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok := startInvitation(t, h, "new@x.com")

	rec := doJSON(t, h, http.MethodGet, "/session", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var sess sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Surface != "onboarding" || !sess.Invited {
		t.Fatalf("session=%+v", sess)
	}
	if sess.CurrentStep != "set_password" || sess.StepIndex != 1 || sess.TotalSteps != 6 {
		t.Fatalf("step=%q index=%d total=%d", sess.CurrentStep, sess.StepIndex, sess.TotalSteps)
	}
}

func TestSignOut_EndsSession(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok, _ := signInDemo(t, h)
	rec := doJSON(t, h, http.MethodPost, "/auth/signout", tok, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/session", tok, "")
	var sess sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Surface != "signin" || sess.Profile != nil {
		t.Fatalf("session=%+v", sess)
	}
}

func TestPatchProfile_TriStateFields(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok, _ := signInDemo(t, h)
	rec := doJSON(t, h, http.MethodPatch, "/profile", tok,
		`{"title":null,"preferredCoachees":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var sess sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Profile.Title != "" {
		t.Fatalf("null did not clear title: %q", sess.Profile.Title)
	}
	if sess.Profile.PreferredCoachees != 30 {
		t.Fatalf("capacity not clamped: %d", sess.Profile.PreferredCoachees)
	}
	// Omitted fields stay put.
	if sess.Profile.Name != "Sarah Johnson" {
		t.Fatalf("name changed: %q", sess.Profile.Name)
	}
}

func TestGetOnboarding_ExposesWizardConfig(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok := startInvitation(t, h, "new@x.com")
	rec := doJSON(t, h, http.MethodGet, "/onboarding", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var ob onboardingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ob); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ob.BioCharacterLimit != 600 || ob.LocationMode != "free_text" {
		t.Fatalf("config=%+v", ob)
	}
	if ob.CurrentStep != "set_password" {
		t.Fatalf("currentStep=%q", ob.CurrentStep)
	}
}

func TestAdvanceStep_HappyPathAndSequenceGate(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok := startInvitation(t, h, "new@x.com")

	rec := doJSON(t, h, http.MethodPost, "/onboarding/steps/set_password", tok,
		`{"password":"longenough1","confirmPassword":"longenough1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var adv advanceStepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &adv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if adv.CurrentStep != "linkedin_import" || adv.StepIndex != 2 {
		t.Fatalf("adv=%+v", adv)
	}

	// Submitting a later step out of order is rejected with the expected step.
	rec = doJSON(t, h, http.MethodPost, "/onboarding/steps/availability", tok,
		`{"preferredCoachees":10,"calendlyUrl":"https://calendly.com/x"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "STEP_OUT_OF_SEQUENCE" || er.Error.Details["expected"] != "linkedin_import" {
		t.Fatalf("error=%+v", er.Error)
	}
}

func TestAdvanceStep_LinkedInReportsPendingImport(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok := startInvitation(t, h, "new@x.com")
	rec := doJSON(t, h, http.MethodPost, "/onboarding/steps/set_password", tok,
		`{"password":"longenough1","confirmPassword":"longenough1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/onboarding/steps/linkedin_import", tok,
		`{"linkedinUrl":"https://linkedin.com/in/sarah-johnson"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var adv advanceStepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &adv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !adv.ImportPending {
		t.Fatalf("expected importPending after the import step")
	}
	if adv.CurrentStep != "review_details" {
		t.Fatalf("currentStep=%q", adv.CurrentStep)
	}
}

func TestAdvanceStep_InvalidPhotoPayload_422(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok := startInvitation(t, h, "new@x.com")
	for _, step := range []struct{ path, body string }{
		{"/onboarding/steps/set_password", `{"password":"longenough1","confirmPassword":"longenough1"}`},
		{"/onboarding/steps/linkedin_import", `{"linkedinUrl":"https://linkedin.com/in/x"}`},
		{"/onboarding/steps/review_details", `{"name":"Sarah Johnson","location":"New York, NY","languages":["English"],"bio":"Coach."}`},
	} {
		if rec := doJSON(t, h, http.MethodPost, step.path, tok, step.body); rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", step.path, rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, h, http.MethodPost, "/onboarding/steps/upload_photo", tok,
		`{"photo":"not-a-data-uri"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/onboarding/steps/upload_photo", tok,
		`{"photo":"data:image/png;base64,iVBORw0KGgo="}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid photo rejected: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBack_AtFirstStep_409(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	tok := startInvitation(t, h, "new@x.com")
	rec := doJSON(t, h, http.MethodPost, "/onboarding/back", tok, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "AT_FIRST_STEP" {
		t.Fatalf("code=%q", er.Error.Code)
	}
}
