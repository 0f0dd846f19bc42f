// Package sessionstore persists the single session slot as one JSON value in
// Redis. Suitable when the API runs on ephemeral hosts and a Redis instance
// provides the durability.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

const defaultKey = "coach-portal:session"

type Store struct {
	client redis.UniversalClient
	key    string
}

func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client, key: defaultKey}
}

// NewStoreWithKey allows tests to isolate their slot.
func NewStoreWithKey(client redis.UniversalClient, key string) *Store {
	return &Store{client: client, key: key}
}

func (s *Store) Load(ctx context.Context) (sessionstore.Record, bool, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessionstore.Record{}, false, nil
		}
		return sessionstore.Record{}, false, err
	}
	var rec sessionstore.Record
	if err := json.Unmarshal(b, &rec); err != nil || rec.Profile.ID == "" {
		// Corrupt slot: treat as signed out.
		return sessionstore.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Save(ctx context.Context, rec sessionstore.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// No TTL: the slot lives until an explicit sign-out.
	return s.client.Set(ctx, s.key, b, 0).Err()
}

func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
