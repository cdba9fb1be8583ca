package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

// Custom error types
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrAPIKeyMissing    = errors.New("API key missing")
	ErrExternalAPI      = errors.New("external API error")
	ErrCircuitOpen      = errors.New("weather API temporarily unavailable")
)

// APIError is a non-2xx answer from the weather API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API Error: %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap classifies the status: 404 is ErrLocationNotFound, anything else ErrExternalAPI.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrLocationNotFound
	}
	return ErrExternalAPI
}

// WeatherRepository defines the interface for live weather data access
type WeatherRepository interface {
	GetByCity(ctx context.Context, city string) (*model.WeatherReading, error)
	GetByCoordinates(ctx context.Context, lat, lon float64) (*model.WeatherReading, error)
}

// weatherRepository implements WeatherRepository against OpenWeatherMap
type weatherRepository struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
}

// NewWeatherRepository creates a new weather repository instance. An empty
// apiKey makes every call fail with ErrAPIKeyMissing.
func NewWeatherRepository(apiKey string, httpClient ...*http.Client) WeatherRepository {
	client := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &weatherRepository{
		httpClient: client,
		baseURL:    config.GetOpenWeatherApiUrl(),
		apiKey:     apiKey,
		breaker:    newBreaker("openweathermap"),
	}
}

// newBreaker trips after five consecutive transport or 5xx failures. A 404 is
// a valid answer and does not count against the upstream.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			config.GetLogger().Warnw("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// GetByCity retrieves current conditions for a city name
func (r *weatherRepository) GetByCity(ctx context.Context, city string) (*model.WeatherReading, error) {
	if city == "" {
		return nil, ErrLocationNotFound
	}
	values := url.Values{}
	values.Set("q", city)
	return r.fetch(ctx, values)
}

// GetByCoordinates retrieves current conditions for a position
func (r *weatherRepository) GetByCoordinates(ctx context.Context, lat, lon float64) (*model.WeatherReading, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return r.fetch(ctx, values)
}

func (r *weatherRepository) fetch(ctx context.Context, values url.Values) (*model.WeatherReading, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	values.Set("units", "metric")
	values.Set("appid", r.apiKey)

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetchFromExternalAPI(ctx, r.baseURL+"?"+values.Encode())
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	reading := Normalize(result.(*model.OpenWeatherMapResponse))
	return &reading, nil
}

// fetchFromExternalAPI performs one GET and decodes the body
func (r *weatherRepository) fetchFromExternalAPI(ctx context.Context, u string) (*model.OpenWeatherMapResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		body, _ := io.ReadAll(resp.Body)
		var payload model.OpenWeatherMapError
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return nil, apiErr
	}

	var data model.OpenWeatherMapResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExternalAPI, err)
	}
	return &data, nil
}
