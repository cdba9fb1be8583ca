package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

const tokyoBody = `{
	"coord": {"lon": 139.6917, "lat": 35.6895},
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 14.2, "feels_like": 13.1, "temp_min": 12.0, "temp_max": 15.0, "pressure": 1009, "humidity": 81},
	"visibility": 9000,
	"wind": {"speed": 3.6, "deg": 40},
	"clouds": {"all": 75},
	"rain": {"1h": 0.42},
	"sys": {"country": "JP", "sunrise": 1736632800, "sunset": 1736669400},
	"name": "Tokyo",
	"cod": 200
}`

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

type errTransport struct{ err error }

func (e errTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, e.err
}

func TestNewWeatherRepository(t *testing.T) {
	repo := NewWeatherRepository("key")
	if repo == nil {
		t.Error("Expected repository to be created")
	}
	if r := repo.(*weatherRepository); r.httpClient != http.DefaultClient {
		t.Error("Expected default HTTP client when none is given")
	}
}

func TestGetByCity_Success(t *testing.T) {
	var gotQuery map[string][]string
	client := StubClient(func(req *http.Request) *http.Response {
		gotQuery = req.URL.Query()
		return jsonResponse(http.StatusOK, tokyoBody)
	})
	repo := NewWeatherRepository("testkey", client)

	reading, err := repo.GetByCity(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotQuery["q"][0] != "Tokyo" || gotQuery["units"][0] != "metric" || gotQuery["appid"][0] != "testkey" {
		t.Errorf("Unexpected query %v", gotQuery)
	}
	if reading.CityName != "Tokyo" || reading.CountryCode != "JP" {
		t.Errorf("Expected Tokyo, JP, got %s", reading.Location())
	}
	if reading.Condition != model.ConditionRain || reading.Description != "light rain" {
		t.Errorf("Unexpected condition %s / %s", reading.Condition, reading.Description)
	}
	if reading.TemperatureC != 14.2 || reading.FeelsLikeC != 13.1 || reading.HumidityPct != 81 || reading.PressureHpa != 1009 {
		t.Errorf("Unexpected main block %+v", reading)
	}
	if reading.WindSpeedMs != 3.6 || reading.CloudinessPct != 75 {
		t.Errorf("Unexpected wind/clouds %+v", reading)
	}
	if reading.VisibilityM == nil || *reading.VisibilityM != 9000 {
		t.Errorf("Expected visibility 9000, got %v", reading.VisibilityM)
	}
	if reading.Precipitation == nil || *reading.Precipitation != (model.Precipitation{Kind: model.PrecipitationRain, AmountMm: 0.42, WindowHours: 1}) {
		t.Errorf("Unexpected precipitation %+v", reading.Precipitation)
	}
	if reading.SunriseEpochS != 1736632800 || reading.SunsetEpochS != 1736669400 {
		t.Errorf("Unexpected sun times %d/%d", reading.SunriseEpochS, reading.SunsetEpochS)
	}
}

func TestGetByCity_EscapesCity(t *testing.T) {
	var raw string
	client := StubClient(func(req *http.Request) *http.Response {
		raw = req.URL.RawQuery
		return jsonResponse(http.StatusOK, `{"name": "New York"}`)
	})
	repo := NewWeatherRepository("testkey", client)

	if _, err := repo.GetByCity(context.Background(), "New York&appid=stolen"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(raw, "appid=stolen") {
		t.Errorf("Expected city to be query-escaped, got %s", raw)
	}
}

func TestGetByCoordinates_Success(t *testing.T) {
	var gotQuery map[string][]string
	client := StubClient(func(req *http.Request) *http.Response {
		gotQuery = req.URL.Query()
		return jsonResponse(http.StatusOK, tokyoBody)
	})
	repo := NewWeatherRepository("testkey", client)

	reading, err := repo.GetByCoordinates(context.Background(), 35.6895, 139.6917)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotQuery["lat"][0] != "35.6895" || gotQuery["lon"][0] != "139.6917" {
		t.Errorf("Unexpected coordinates in query %v", gotQuery)
	}
	if _, ok := gotQuery["q"]; ok {
		t.Error("Expected no city parameter on a coordinate lookup")
	}
	if reading.CityName != "Tokyo" {
		t.Errorf("Expected Tokyo, got %s", reading.CityName)
	}
}

func TestGetWeather_ErrorCases(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		city    string
		client  *http.Client
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing API key",
			apiKey:  "",
			city:    "London",
			client:  StubClient(func(*http.Request) *http.Response { return jsonResponse(http.StatusOK, tokyoBody) }),
			wantErr: ErrAPIKeyMissing,
		},
		{
			name:    "empty city",
			apiKey:  "testkey",
			city:    "",
			client:  StubClient(func(*http.Request) *http.Response { return jsonResponse(http.StatusOK, tokyoBody) }),
			wantErr: ErrLocationNotFound,
		},
		{
			name:    "not found",
			apiKey:  "testkey",
			city:    "Atlantis",
			client:  StubClient(func(*http.Request) *http.Response { return jsonResponse(http.StatusNotFound, `{"cod":"404","message":"city not found"}`) }),
			wantErr: ErrLocationNotFound,
			wantMsg: "city not found",
		},
		{
			name:    "unauthorized",
			apiKey:  "badkey",
			city:    "London",
			client:  StubClient(func(*http.Request) *http.Response { return jsonResponse(http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`) }),
			wantErr: ErrExternalAPI,
			wantMsg: "Invalid API key",
		},
		{
			name:    "server error without body",
			apiKey:  "testkey",
			city:    "London",
			client:  StubClient(func(*http.Request) *http.Response { return jsonResponse(http.StatusBadGateway, ``) }),
			wantErr: ErrExternalAPI,
			wantMsg: "API Error: 502",
		},
		{
			name:    "transport failure",
			apiKey:  "testkey",
			city:    "London",
			client:  &http.Client{Transport: errTransport{err: errors.New("dial tcp: connection refused")}},
			wantErr: ErrExternalAPI,
		},
		{
			name:    "malformed body",
			apiKey:  "testkey",
			city:    "London",
			client:  StubClient(func(*http.Request) *http.Response { return jsonResponse(http.StatusOK, `{"name": `) }),
			wantErr: ErrExternalAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewWeatherRepository(tt.apiKey, tt.client)
			_, err := repo.GetByCity(context.Background(), tt.city)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	calls := 0
	client := StubClient(func(*http.Request) *http.Response {
		calls++
		return jsonResponse(http.StatusInternalServerError, `{"cod":"500","message":"server error"}`)
	})
	repo := NewWeatherRepository("testkey", client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.GetByCity(ctx, "London"); !errors.Is(err, ErrExternalAPI) {
			t.Fatalf("Attempt %d: expected ErrExternalAPI, got %v", i, err)
		}
	}
	_, err := repo.GetByCity(ctx, "London")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen after repeated failures, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected the open breaker to skip the upstream, got %d calls", calls)
	}
}

func TestCircuitBreaker_IgnoresNotFound(t *testing.T) {
	client := StubClient(func(*http.Request) *http.Response {
		return jsonResponse(http.StatusNotFound, `{"cod":"404","message":"city not found"}`)
	})
	repo := NewWeatherRepository("testkey", client)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := repo.GetByCity(ctx, "Atlantis"); !errors.Is(err, ErrLocationNotFound) {
			t.Fatalf("Attempt %d: expected ErrLocationNotFound, got %v", i, err)
		}
	}
}
