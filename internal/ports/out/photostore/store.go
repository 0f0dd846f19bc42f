package photostore

import "context"

// Store converts an accepted image payload into a storable URI reference.
type Store interface {
	// Put stores the image bytes and returns an opaque URI for the profile record.
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}
