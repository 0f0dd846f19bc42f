package profileimport

import "context"

// Preview is the partial field set returned by the external profile import.
// Empty fields were not present on the remote profile.
type Preview struct {
	Name     string
	Title    string
	Location string
	PhotoRef string
}

// Importer fetches public profile details for a profile URL.
//
// Fetch may take a nondeterministic (but bounded) amount of time and must
// honor ctx cancellation. Callers must not assume synchronous completion and
// must tolerate Fetch never succeeding.
type Importer interface {
	Fetch(ctx context.Context, profileURL string) (Preview, error)
}
