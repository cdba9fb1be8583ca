package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

// Limits are expressed per minute.
type Limits struct {
	GlobalPerMinute float64
	GlobalBurst     int
	CityPerMinute   float64
	CityBurst       int
	// Entries idle for longer than StaleAfter are dropped by Cleanup.
	StaleAfter time.Duration
}

// LimitsFromConfig reads the rate_limiter section.
func LimitsFromConfig() Limits {
	globalRate, globalBurst := config.GetGlobalRateLimiterConfig()
	cityRate, cityBurst := config.GetParamRateLimiterConfig()
	return Limits{
		GlobalPerMinute: globalRate,
		GlobalBurst:     globalBurst,
		CityPerMinute:   cityRate,
		CityBurst:       cityBurst,
		StaleAfter:      config.GetRateLimiterCleanupTimeout(),
	}
}

// visitor holds a rate limiter and the last time it was used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client budget and, for requests naming a city, a
// per-client-per-city budget. City names are compared case-insensitively.
type RateLimiter struct {
	limits   Limits
	paramKey string
	exempt   func(*http.Request) bool

	mu     sync.Mutex
	global map[string]*visitor            // ip
	city   map[string]map[string]*visitor // ip -> city
}

func NewRateLimiter(limits Limits) *RateLimiter {
	return &RateLimiter{
		limits:   limits,
		paramKey: "city",
		global:   make(map[string]*visitor),
		city:     make(map[string]map[string]*visitor),
	}
}

func (rl *RateLimiter) limiters(ip, city string) (*rate.Limiter, *rate.Limiter) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()

	g, ok := rl.global[ip]
	if !ok {
		g = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.limits.GlobalPerMinute/60), rl.limits.GlobalBurst)}
		rl.global[ip] = g
	}
	g.lastSeen = now
	if city == "" {
		return g.limiter, nil
	}

	if _, ok := rl.city[ip]; !ok {
		rl.city[ip] = make(map[string]*visitor)
	}
	c, ok := rl.city[ip][city]
	if !ok {
		c = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.limits.CityPerMinute/60), rl.limits.CityBurst)}
		rl.city[ip][city] = c
	}
	c.lastSeen = now
	return g.limiter, c.limiter
}

// Exempt lets requests matching fn through without spending any budget.
func (rl *RateLimiter) Exempt(fn func(*http.Request) bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.exempt = fn
}

func (rl *RateLimiter) isExempt(r *http.Request) bool {
	rl.mu.Lock()
	fn := rl.exempt
	rl.mu.Unlock()
	return fn != nil && fn(r)
}

// Cleanup drops visitors not seen within StaleAfter.
func (rl *RateLimiter) Cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.global {
		if now.Sub(v.lastSeen) > rl.limits.StaleAfter {
			delete(rl.global, ip)
		}
	}
	for ip, cities := range rl.city {
		for c, v := range cities {
			if now.Sub(v.lastSeen) > rl.limits.StaleAfter {
				delete(cities, c)
			}
		}
		if len(cities) == 0 {
			delete(rl.city, ip)
		}
	}
}

// StartCleanup runs Cleanup every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.Cleanup(now)
			}
		}
	}()
}

// Reset clears all visitor state. Used primarily for testing.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.global = make(map[string]*visitor)
	rl.city = make(map[string]map[string]*visitor)
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

func tooManyRequests(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}

// Middleware returns an HTTP middleware that responds 429 once either budget is spent.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.isExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		city := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(rl.paramKey)))
		globalLimiter, cityLimiter := rl.limiters(getIP(r), city)
		if !globalLimiter.Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per user/IP", rl.limits.GlobalPerMinute),
				"Too Many Requests (global limit)")
			return
		}
		if cityLimiter != nil && !cityLimiter.Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per city per user/IP", rl.limits.CityPerMinute),
				"Too Many Requests (per-city limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}
