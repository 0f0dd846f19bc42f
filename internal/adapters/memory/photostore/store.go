package photostore

import (
	"context"
	"encoding/base64"
)

// Store converts image payloads into data URIs. No bytes leave the process,
// which mirrors how the browser prototype previewed photos and keeps local
// development free of cloud credentials.
type Store struct{}

func NewStore() Store { return Store{} }

func (Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	_ = ctx
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
