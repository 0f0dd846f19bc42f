package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Beacon-Coaching/coach-portal-api/internal/app/authgate"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/wizard"
	"github.com/Beacon-Coaching/coach-portal-api/internal/domain"
	"github.com/Beacon-Coaching/coach-portal-api/internal/platform/token"
)

const defaultImportTimeout = 30 * time.Second

// Server is the HTTP adapter over the auth gate and wizard services.
type Server struct {
	Auth   *authgate.Service
	Wizard *wizard.Service

	// Tokens is nil in dev auth mode; sign-in responses then omit the token.
	Tokens *token.Issuer
	Log    *zap.Logger

	// ImportTimeout bounds the background profile import spawned after the
	// import step is submitted.
	ImportTimeout time.Duration
}

func NewServer(auth *authgate.Service, wiz *wizard.Service, tokens *token.Issuer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Auth:          auth,
		Wizard:        wiz,
		Tokens:        tokens,
		Log:           log,
		ImportTimeout: defaultImportTimeout,
	}
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}

	st, err := s.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeAuthResponse(w, r, st)
}

func (s *Server) handleStartInvitation(w http.ResponseWriter, r *http.Request) {
	var req invitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}

	st, err := s.Auth.StartInvitation(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeAuthResponse(w, r, st)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, r *http.Request, st authgate.SessionState) {
	resp := authResponse{Session: sessionResponseFromState(st, stepForState(st))}
	if s.Tokens != nil && st.Active() {
		tok, err := s.Tokens.Issue(st.Profile.Email)
		if err != nil {
			s.Log.Error("token issue failed", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
			return
		}
		resp.Token = tok
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.SignOut(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st := s.Auth.Current(r.Context())
	writeJSON(w, http.StatusOK, sessionResponseFromState(st, stepForState(st)))
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	var req profilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}

	st, err := s.Auth.ApplyUpdate(r.Context(), req.toPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !st.Active() {
		writeError(w, r, http.StatusUnauthorized, "NO_ACTIVE_SESSION", "no active session", nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponseFromState(st, stepForState(st)))
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	st := s.Auth.Current(r.Context())
	if !st.Active() {
		writeError(w, r, http.StatusUnauthorized, "NO_ACTIVE_SESSION", "no active session", nil)
		return
	}

	cfg := s.Wizard.Config()
	mode := cfg.LocationMode
	if mode == "" {
		mode = wizard.LocationFreeText
	}
	limit := cfg.BioCharacterLimit
	if limit <= 0 {
		limit = wizard.DefaultBioCharacterLimit
	}
	step := stepForState(st)
	writeJSON(w, http.StatusOK, onboardingResponse{
		CurrentStep:       string(step),
		StepIndex:         step.Index(),
		TotalSteps:        domain.TotalSteps,
		BioCharacterLimit: limit,
		LocationMode:      string(mode),
		AllowedLocations:  append([]string(nil), cfg.AllowedLocations...),
	})
}

func (s *Server) handleAdvanceStep(w http.ResponseWriter, r *http.Request) {
	step := domain.WizardStep(chi.URLParam(r, "step"))

	var req advanceStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}

	in, verr := stepInputFromRequest(step, req)
	if verr != nil {
		writeServiceError(w, r, verr)
		return
	}

	res, err := s.Wizard.Advance(r.Context(), step, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if res.Import != nil {
		go s.resolveImport(res.Import)
	}

	writeJSON(w, http.StatusOK, advanceStepResponse{
		Profile:       profileFromDomain(res.Profile),
		CurrentStep:   string(res.Next),
		StepIndex:     res.Next.Index(),
		TotalSteps:    domain.TotalSteps,
		ImportPending: res.Import != nil,
	})
}

// resolveImport runs the external profile import detached from the request:
// the submission response must not wait for it.
func (s *Server) resolveImport(t *wizard.ImportTicket) {
	timeout := s.ImportTimeout
	if timeout <= 0 {
		timeout = defaultImportTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = s.Wizard.ResolveImport(ctx, t)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	step, err := s.Wizard.Back(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backResponse{
		CurrentStep: string(step),
		StepIndex:   step.Index(),
		TotalSteps:  domain.TotalSteps,
	})
}

func stepInputFromRequest(step domain.WizardStep, req advanceStepRequest) (wizard.StepInput, error) {
	var in wizard.StepInput
	switch step {
	case domain.StepSetPassword:
		in.Password = &wizard.SetPasswordInput{
			Password: req.Password,
			Confirm:  req.ConfirmPassword,
		}
	case domain.StepLinkedInImport:
		in.LinkedIn = &wizard.LinkedInInput{ProfileURL: req.LinkedinURL}
	case domain.StepReviewDetails:
		in.Review = &wizard.ReviewInput{
			Name:      req.Name,
			Title:     req.Title,
			Location:  req.Location,
			Bio:       req.Bio,
			Languages: req.Languages,
		}
	case domain.StepUploadPhoto:
		in.Photo = &wizard.PhotoInput{}
		if req.Photo != "" {
			data, ct, ok := parseDataURI(req.Photo)
			if !ok {
				return in, &wizard.Error{
					Status:  http.StatusUnprocessableEntity,
					Code:    "VALIDATION_ERROR",
					Message: "invalid photo",
					Details: map[string]any{"photo": "must be a base64 data URI"},
				}
			}
			in.Photo.ImageData = data
			in.Photo.ContentType = ct
		}
	case domain.StepAvailability:
		in.Availability = &wizard.AvailabilityInput{
			MonthlyCapacity: req.PreferredCoachees,
			SchedulingURL:   req.CalendlyURL,
		}
	}
	return in, nil
}

// stepForState mirrors the wizard's step resolution for read-only views that
// hold a SessionState rather than a store record.
func stepForState(st authgate.SessionState) domain.WizardStep {
	switch {
	case !st.Active():
		return ""
	case st.Profile.IsOnboarded:
		return domain.StepComplete
	case st.CurrentStep.Valid():
		return st.CurrentStep
	default:
		return domain.StepSetPassword
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
