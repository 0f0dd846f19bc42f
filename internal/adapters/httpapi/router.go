package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: it wires routes and middleware and
// delegates everything else to the Server methods.
func NewRouter(s *Server, auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.Log))
	if auth != nil {
		r.Use(auth)
	}

	// Health endpoint is deliberately unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/auth/signin", s.handleSignIn)
	r.Post("/auth/invitations", s.handleStartInvitation)
	r.Post("/auth/signout", s.handleSignOut)

	r.Get("/session", s.handleGetSession)
	r.Patch("/profile", s.handlePatchProfile)

	r.Get("/onboarding", s.handleGetOnboarding)
	r.Post("/onboarding/steps/{step}", s.handleAdvanceStep)
	r.Post("/onboarding/back", s.handleBack)

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}
