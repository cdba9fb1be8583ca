package integrationtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	"github.com/alicebob/miniredis/v2"

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

const (
	testAPIKey    = "test_api_key"
	testAccessKey = "test_access_key"
	testImageURL  = "https://images.example/photo.jpg"
)

var owmCalls atomic.Int64

func createMockRedisServer() *miniredis.Miniredis {
	mr := miniredis.NewMiniRedis()
	if err := mr.StartAddr(config.GetTestRedisMockPort()); err != nil {
		// the fixed port is taken; any free port will do
		if err := mr.Start(); err != nil {
			panic(err)
		}
	}
	return mr
}

func owmBody(name, country string, lat, lon float64, main, desc string) string {
	return fmt.Sprintf(`{
		"coord": {"lat": %g, "lon": %g},
		"weather": [{"main": %q, "description": %q}],
		"main": {"temp": 15.2, "feels_like": 14.1, "pressure": 1012, "humidity": 72},
		"visibility": 10000,
		"wind": {"speed": 4.1},
		"clouds": {"all": 40},
		"sys": {"country": %q, "sunrise": 1736668800, "sunset": 1736698800},
		"name": %q
	}`, lat, lon, main, desc, country, name)
}

func mockOWMApi() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owmCalls.Add(1)
		q := r.URL.Query()
		if q.Get("appid") != testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Has("lat"):
			_, _ = w.Write([]byte(owmBody("Lyon", "FR", 45.76, 4.84, "Clear", "clear sky")))
		case strings.EqualFold(q.Get("q"), "London"):
			_, _ = w.Write([]byte(owmBody("London", "GB", 51.51, -0.13, "Rain", "light rain")))
		case strings.EqualFold(q.Get("q"), "Paris"):
			_, _ = w.Write([]byte(owmBody("Paris", "FR", 48.85, 2.35, "Clouds", "broken clouds")))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
		}
	}))
}

func mockUnsplashApi() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_id") != testAccessKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":["OAuth error: The access token is invalid"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"urls":{"regular":"` + testImageURL + `"}}`))
	}))
}

// setupIntegrationTestServer wires the full stack the way main does, with
// history persisted in the redis pointed to by config.
func setupIntegrationTestServer(settings service.Settings, accessKey string) (*httptest.Server, *history.Store) {
	store := history.NewStore(redis.NewHistoryPersister())
	svc := service.NewWeatherService(settings, repository.NewWeatherRepository(settings.Credential), store)
	picker := background.NewPicker(accessKey)

	limiter := middleware.NewRateLimiter(middleware.LimitsFromConfig())
	limiter.Exempt(func(*http.Request) bool { return svc.Mode() == service.ModeMock })

	mux := http.NewServeMux()
	handler.NewWeatherHandler(session.New(svc), store, picker).Register(mux, limiter.Middleware)

	return httptest.NewServer(mux), store
}
