package sessionstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_MalformedFileFailsOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := NewStore(path)
	_, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error for malformed data: %v", err)
	}
	if ok {
		t.Fatalf("expected malformed slot to read as signed out")
	}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	_, ok, err := store.Load(context.Background())
	if err != nil || ok {
		t.Fatalf("Load missing file: ok=%v err=%v", ok, err)
	}
}
