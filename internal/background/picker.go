// Package background chooses the decorative image behind a reading. Image
// search is optional; every failure falls back to the static table.
package background

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

const (
	SourceSearch = "search"
	SourceStatic = "static"
)

var (
	ErrSearchDisabled = errors.New("image search not configured")
	ErrNoImage        = errors.New("image search returned no image")
)

type searchResponse struct {
	URLs struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

type Picker struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	breaker    *gobreaker.CircuitBreaker
}

// NewPicker returns a picker. An empty or "demo" access key disables search.
func NewPicker(accessKey string, httpClient ...*http.Client) *Picker {
	client := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &Picker{
		httpClient: client,
		baseURL:    config.GetUnsplashApiUrl(),
		accessKey:  accessKey,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "unsplash",
			Interval: time.Minute,
			Timeout:  time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (p *Picker) searchEnabled() bool {
	return p.accessKey != "" && p.accessKey != "demo"
}

// Pick returns a background for cond in city. It never fails.
func (p *Picker) Pick(ctx context.Context, cond model.Condition, city string) model.Background {
	imageURL, err := p.Search(ctx, SearchQuery(cond, city))
	if err == nil {
		return model.Background{ImageURL: imageURL, Gradient: Gradient, Source: SourceSearch}
	}
	if !errors.Is(err, ErrSearchDisabled) {
		config.GetLogger().Warnw("Falling back to static background", "condition", cond, "city", city, "error", err)
	}
	return model.Background{ImageURL: StaticImage(cond), Gradient: Gradient, Source: SourceStatic}
}

// Search asks the image-search API for one landscape photo matching query.
func (p *Picker) Search(ctx context.Context, query string) (string, error) {
	if !p.searchEnabled() {
		return "", ErrSearchDisabled
	}
	values := url.Values{}
	values.Set("query", query)
	values.Set("orientation", "landscape")
	values.Set("client_id", p.accessKey)

	result, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return "", err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("image search status %d", resp.StatusCode)
		}
		var data searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", err
		}
		if data.URLs.Regular == "" {
			return "", ErrNoImage
		}
		return data.URLs.Regular, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
