package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakhrymubarak/weather-lookup/internal/background"
	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/handler"
	"github.com/fakhrymubarak/weather-lookup/internal/history"
	"github.com/fakhrymubarak/weather-lookup/internal/middleware"
	"github.com/fakhrymubarak/weather-lookup/internal/redis"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
	"github.com/fakhrymubarak/weather-lookup/internal/service"
	"github.com/fakhrymubarak/weather-lookup/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		config.GetLogger().Fatalw("Server failed", "error", err)
	}
}

func run(ctx context.Context) error {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	persister, closer := newHistoryPersister(ctx)
	if closer != nil {
		defer closer.Close()
	}
	store := history.NewStore(persister)
	store.Load(ctx)

	srv := newServer(ctx, store, &http.Server{Addr: ":" + config.GetServerPort()}, nil)

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Starting weather lookup server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Infow("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHistoryPersister picks the history backend from config. An unreachable
// redis or an unopenable sqlite file degrades to the in-memory slot.
func newHistoryPersister(ctx context.Context) (history.Persister, io.Closer) {
	logger := config.GetLogger()
	switch backend := config.GetHistoryBackend(); backend {
	case config.HistoryBackendRedis:
		if err := redis.Ping(ctx, 2*time.Second); err != nil {
			logger.Warnw("Redis unavailable, history will not survive restarts", "addr", config.GetRedisAddr(), "error", err)
			return history.NewMemoryPersister(), nil
		}
		return redis.NewHistoryPersister(), nil
	case config.HistoryBackendSQLite:
		p, err := history.OpenSQLitePersister(ctx, config.GetHistorySQLitePath(), config.GetHistoryKey())
		if err != nil {
			logger.Warnw("SQLite unavailable, history will not survive restarts", "path", config.GetHistorySQLitePath(), "error", err)
			return history.NewMemoryPersister(), nil
		}
		return p, p
	default:
		return history.NewMemoryPersister(), nil
	}
}

// newServer builds the service graph and the routes onto srv. httpClient, when
// non-nil, is used for both upstream APIs. Only live weather lookups are rate
// limited; the limiter's cleanup stops with ctx.
func newServer(ctx context.Context, store *history.Store, srv *http.Server, httpClient *http.Client) *http.Server {
	settings := service.Settings{
		Credential: config.GetOpenWeatherMapAPIKey(),
		DemoMode:   config.GetDemoMode(),
	}
	repo := repository.NewWeatherRepository(settings.Credential, httpClient)
	svc := service.NewWeatherService(settings, repo, store)
	picker := background.NewPicker(config.GetUnsplashAccessKey(), httpClient)

	limiter := middleware.NewRateLimiter(middleware.LimitsFromConfig())
	limiter.Exempt(func(*http.Request) bool { return svc.Mode() == service.ModeMock })
	limiter.StartCleanup(ctx)

	mux := http.NewServeMux()
	handler.NewWeatherHandler(session.New(svc), store, picker).Register(mux, limiter.Middleware)

	srv.Handler = mux
	srv.ReadHeaderTimeout = config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second)
	srv.ReadTimeout = config.GetServerTimeoutDuration("read_timeout", 15*time.Second)
	srv.WriteTimeout = config.GetServerTimeoutDuration("write_timeout", 10*time.Second)
	srv.IdleTimeout = config.GetServerTimeoutDuration("idle_timeout", 30*time.Second)

	config.GetLogger().Infow("Weather service configured",
		"mode", svc.Mode().String(),
		"live_available", svc.IsLiveModeAvailable(),
		"history_entries", store.Len(context.Background()),
	)
	return srv
}
