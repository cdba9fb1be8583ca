package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/history"
	"github.com/fakhrymubarak/weather-lookup/internal/redis"
)

func withBackend(t *testing.T, backend string) {
	t.Helper()
	viper.Set("history.backend", backend)
	t.Cleanup(func() { viper.Set("history.backend", config.HistoryBackendMemory) })
}

func TestNewHistoryPersister_Memory(t *testing.T) {
	withBackend(t, config.HistoryBackendMemory)
	p, closer := newHistoryPersister(context.Background())
	if _, ok := p.(*history.MemoryPersister); !ok {
		t.Errorf("Expected memory persister, got %T", p)
	}
	if closer != nil {
		t.Error("Expected no closer for memory backend")
	}
}

func TestNewHistoryPersister_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	redis.ResetClientForTest()
	t.Cleanup(redis.ResetClientForTest)
	withBackend(t, config.HistoryBackendRedis)

	p, _ := newHistoryPersister(context.Background())
	if _, ok := p.(*history.RedisPersister); !ok {
		t.Fatalf("Expected redis persister, got %T", p)
	}
	if err := p.Write(context.Background(), []byte(`["Paris"]`)); err != nil {
		t.Fatal(err)
	}
	if got, _ := mr.Get(config.GetHistoryKey()); got != `["Paris"]` {
		t.Errorf("Expected history in redis, got %q", got)
	}
}

func TestNewHistoryPersister_RedisDownFallsBack(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	redis.ResetClientForTest()
	t.Cleanup(redis.ResetClientForTest)
	withBackend(t, config.HistoryBackendRedis)

	p, _ := newHistoryPersister(context.Background())
	if _, ok := p.(*history.MemoryPersister); !ok {
		t.Errorf("Expected memory fallback, got %T", p)
	}
}

func TestNewHistoryPersister_SQLite(t *testing.T) {
	viper.Set("history.sqlite_path", filepath.Join(t.TempDir(), "history.db"))
	t.Cleanup(func() { viper.Set("history.sqlite_path", "") })
	withBackend(t, config.HistoryBackendSQLite)

	p, closer := newHistoryPersister(context.Background())
	if _, ok := p.(*history.SQLitePersister); !ok {
		t.Fatalf("Expected sqlite persister, got %T", p)
	}
	if closer == nil {
		t.Fatal("Expected sqlite persister to be closable")
	}
	if err := closer.Close(); err != nil {
		t.Error(err)
	}
}

func TestNewServer(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "")
	t.Setenv("UNSPLASH_ACCESS_KEY", "")
	store := history.NewStore(nil)
	srv := newServer(context.Background(), store, &http.Server{Addr: ":0"}, nil)

	if srv.ReadHeaderTimeout != 15*time.Second || srv.WriteTimeout != 10*time.Second || srv.IdleTimeout != 30*time.Second {
		t.Errorf("Unexpected timeouts %v/%v/%v", srv.ReadHeaderTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}

	server := httptest.NewServer(srv.Handler)
	defer server.Close()

	for _, path := range []string{"/weather?city=Tokyo", "/mode", "/history/suggestions"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("could not send GET request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestServerPort(t *testing.T) {
	if port := config.GetServerPort(); port != "8080" {
		t.Errorf("Expected default port 8080, got %s", port)
	}
}

func TestNewServer_RateLimitScope(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := history.NewStore(nil)
	store.Add(ctx, "Toronto")
	srv := newServer(ctx, store, &http.Server{Addr: ":0"}, nil)

	server := httptest.NewServer(srv.Handler)
	defer server.Close()

	get := func(path string) int {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("could not send GET request: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	// one request per keystroke
	partial := ""
	for _, c := range "toronto ontario" {
		partial += string(c)
		if status := get("/history/suggestions?q=" + url.QueryEscape(partial)); status != http.StatusOK {
			t.Fatalf("suggestions for %q: expected 200, got %d", partial, status)
		}
	}
	for i := 0; i < 12; i++ {
		if status := get("/mode"); status != http.StatusOK {
			t.Fatalf("mode request %d: expected 200, got %d", i+1, status)
		}
	}
	for i := 0; i < 5; i++ {
		if status := get("/weather?city=Toronto"); status != http.StatusOK {
			t.Fatalf("demo lookup %d: expected 200, got %d", i+1, status)
		}
	}
}
