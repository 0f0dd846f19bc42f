// Package linkedin simulates the external profile-import collaborator.
//
// There is no real LinkedIn integration: the importer returns a canned
// preview after a configurable delay, which is enough for the wizard to
// exercise its asynchronous import handling (pending state, stale-result
// discard, import-never-returns tolerance).
package linkedin

import (
	"context"
	"strings"
	"time"

	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/profileimport"
)

type Importer struct {
	// Latency delays every Fetch to simulate the remote call.
	Latency time.Duration

	// Preview, when non-zero, overrides the derived preview.
	Preview profileimport.Preview

	// Err, when set, makes every Fetch fail after the latency elapses.
	Err error
}

func NewImporter(latency time.Duration) *Importer {
	return &Importer{Latency: latency}
}

func (i *Importer) Fetch(ctx context.Context, profileURL string) (profileimport.Preview, error) {
	if i.Latency > 0 {
		select {
		case <-time.After(i.Latency):
		case <-ctx.Done():
			return profileimport.Preview{}, ctx.Err()
		}
	}
	if i.Err != nil {
		return profileimport.Preview{}, i.Err
	}
	if i.Preview != (profileimport.Preview{}) {
		return i.Preview, nil
	}
	return derivePreview(profileURL), nil
}

// derivePreview fabricates a plausible preview from the URL slug, falling
// back to a fixed identity when the slug is unusable.
func derivePreview(profileURL string) profileimport.Preview {
	p := profileimport.Preview{
		Name:     "Sarah Johnson",
		Title:    "Senior Career Coach",
		Location: "New York, NY",
	}
	slug := profileURL
	if i := strings.LastIndex(slug, "/in/"); i >= 0 {
		slug = slug[i+len("/in/"):]
	} else {
		return p
	}
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return p
	}
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if name := strings.TrimSpace(strings.Join(words, " ")); name != "" {
		p.Name = name
	}
	return p
}
