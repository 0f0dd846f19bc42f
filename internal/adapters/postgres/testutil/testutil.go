package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/postgres"
	pgsessionstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/postgres/sessionstore"
)

// OpenMigratedPool connects to the database named by TEST_DATABASE_URL,
// applies the schema, and empties the session slot. Tests that need Postgres
// are skipped when the variable is unset, so the default `go test` run stays
// hermetic.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open postgres pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, pgsessionstore.Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM coach_session`); err != nil {
		t.Fatalf("reset session slot: %v", err)
	}
	return pool
}
