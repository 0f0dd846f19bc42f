package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Beacon-Coaching/coach-portal-api/internal/platform/token"
)

// Tiny dev-only token minting server.
//
// It signs session tokens with the same HS256 secret the API uses, which is
// handy for curl sessions and smoke tests without walking the sign-in flow.

func main() {
	port := getenv("PORT", "5556")
	secret := getenv("SESSION_TOKEN_SECRET", "dev-secret")
	ttl := getenvDuration("TTL", 72*time.Hour)

	iss := token.NewIssuer([]byte(secret), ttl, nil)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Mint a token:
	//   GET /token?sub=coach@example.com
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		sub := strings.TrimSpace(r.URL.Query().Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}

		tok, err := iss.Issue(sub)
		if err != nil {
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": tok,
			"sub":   sub,
			"exp":   time.Now().UTC().Add(ttl).Unix(),
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("devtoken listening on :%s (ttl=%s)", port, ttl)
	log.Fatal(srv.ListenAndServe())
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
