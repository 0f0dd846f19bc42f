package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	filestore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/file/sessionstore"
	"github.com/Beacon-Coaching/coach-portal-api/internal/adapters/httpapi"
	"github.com/Beacon-Coaching/coach-portal-api/internal/adapters/linkedin"
	memclock "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/clock"
	memmailer "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/mailer"
	memphotos "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/photostore"
	memstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/memory/sessionstore"
	pgstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/postgres/sessionstore"
	postgres_testutil "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/postgres/testutil"
	redisstore "github.com/Beacon-Coaching/coach-portal-api/internal/adapters/redis/sessionstore"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/authgate"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/wizard"
	"github.com/Beacon-Coaching/coach-portal-api/internal/platform/token"
	sessionstoreport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendFile     backend = "file"
	backendPostgres backend = "postgres"
	backendRedis    backend = "redis"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "file":
		return []backend{backendFile}
	case "postgres":
		return []backend{backendPostgres}
	case "redis":
		return []backend{backendRedis}
	case "all":
		return []backend{backendMemory, backendFile, backendPostgres, backendRedis}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|file|postgres|redis|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	var store sessionstoreport.Store
	switch b {
	case backendFile:
		store = filestore.NewStore(filepath.Join(t.TempDir(), "session.json"))
	case backendPostgres:
		store = pgstore.NewStore(postgres_testutil.OpenMigratedPool(t))
	case backendRedis:
		addr := os.Getenv("TEST_REDIS_ADDR")
		if addr == "" {
			t.Skip("TEST_REDIS_ADDR not set; skipping redis-backed test")
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { _ = client.Close() })
		key := "coach-portal:itest:" + t.Name()
		t.Cleanup(func() { _ = client.Del(context.Background(), key).Err() })
		store = redisstore.NewStoreWithKey(client, key)
	default:
		store = memstore.NewStore()
	}

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	iss := token.NewIssuer([]byte("itest-secret"), time.Hour, clk)

	auth := authgate.NewService(store, clk, memmailer.NewCapture(),
		authgate.DemoIdentity{Email: "coach@example.com", Password: "password"},
		authgate.InviteOptions{PortalBaseURL: "https://portal.example.com"}, nil)
	wiz := wizard.NewService(store, clk, linkedin.NewImporter(0), memphotos.NewStore(), auth, wizard.Config{}, nil)

	api := httpapi.NewServer(auth, wiz, iss, nil)
	handler := httpapi.NewRouter(api, httpapi.NewAuthMiddleware(iss))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, bearer string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}
