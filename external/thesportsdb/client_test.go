package thesportsdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/cache"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/ratelimit"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/resilience"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, payloads cache.PayloadCache) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:    server.URL + "/api/v1/json",
		APIKey:     "123",
		Timeout:    2 * time.Second,
		Retry:      resilience.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond},
		Limiter:    ratelimit.NewSlidingWindow(100, time.Minute),
		Payloads:   payloads,
		PayloadTTL: time.Minute,
		Logger:     logging.NewNop(),
	})
}

func TestClient_FetchTeamsUsesKeyInPath(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/json/123/lookup_all_teams.php" || r.URL.Query().Get("id") != "4689" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"teams":[{"idTeam":"138109","strTeam":"Jeonbuk Hyundai Motors"}]}`))
	}, nil)

	batch, err := client.FetchEntities(context.Background(), canonical.KindTeam, canonical.Scope{LeagueRef: "4689"})
	if err != nil {
		t.Fatalf("FetchEntities error: %v", err)
	}
	if len(batch.Records) != 1 || batch.Records[0].SourceID(canonical.ProviderTheSportsDB) != "138109" {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestClient_FixtureEndpointBySeason(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"events":null}`))
	}, nil)

	ctx := context.Background()
	if _, err := client.FetchEntities(ctx, canonical.KindFixture, canonical.Scope{LeagueRef: "4689", Season: "2025"}); err != nil {
		t.Fatalf("season fetch error: %v", err)
	}
	if _, err := client.FetchEntities(ctx, canonical.KindFixture, canonical.Scope{LeagueRef: "4689"}); err != nil {
		t.Fatalf("past fetch error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 2 {
		t.Fatalf("expected two requests, got=%v", paths)
	}
	if paths[0] != "/api/v1/json/123/eventsseason.php?id=4689&s=2025" {
		t.Fatalf("unexpected season path: %s", paths[0])
	}
	if paths[1] != "/api/v1/json/123/eventspastleague.php?id=4689" {
		t.Fatalf("unexpected past path: %s", paths[1])
	}
}

func TestClient_ServerErrorsBecomeDependencyErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	_, err := client.FetchEntities(context.Background(), canonical.KindLeague, canonical.Scope{LeagueRef: "4689"})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, calls=%d", calls.Load())
	}
}

func TestClient_PayloadCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"leagues":[{"idLeague":"4689","strLeague":"K League 1","strSport":"Soccer"}]}`))
	}, cache.NewMemoryPayloads())

	for i := 0; i < 3; i++ {
		if _, err := client.FetchEntities(context.Background(), canonical.KindLeague, canonical.Scope{LeagueRef: "4689"}); err != nil {
			t.Fatalf("FetchEntities error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one network call, got=%d", calls.Load())
	}
}

func TestClient_RequiresScope(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchEntities(context.Background(), canonical.KindPlayer, canonical.Scope{LeagueRef: "4689"}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestClient_RedactsPrivateKey(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{APIKey: "paid-key", Logger: logging.NewNop()})
	if got := client.redact("https://x/api/v1/json/paid-key/lookupleague.php"); got != "https://x/api/v1/json/REDACTED/lookupleague.php" {
		t.Fatalf("unexpected redaction: %s", got)
	}
}
