package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// History persistence backends accepted by history.backend.
const (
	HistoryBackendRedis  = "redis"
	HistoryBackendSQLite = "sqlite"
	HistoryBackendMemory = "memory"
)

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetOpenWeatherApiUrl() string {
	initConfig()
	url := viper.GetString("openweathermap.api_url")
	if url == "" {
		return "https://api.openweathermap.org/data/2.5/weather"
	}
	return url
}

func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return strings.TrimSpace(os.Getenv("OPENWEATHERMAP_API_KEY"))
}

func GetUnsplashApiUrl() string {
	initConfig()
	url := viper.GetString("unsplash.api_url")
	if url == "" {
		return "https://api.unsplash.com/photos/random"
	}
	return url
}

// GetUnsplashAccessKey returns the image-search credential. An empty value or "demo"
// disables image search.
func GetUnsplashAccessKey() string {
	_ = godotenv.Load()
	return strings.TrimSpace(os.Getenv("UNSPLASH_ACCESS_KEY"))
}

func GetRedisAddr() string {
	initConfig()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	addr := viper.GetString("redis.addr")
	if addr == "" {
		return "localhost:6379"
	}
	return addr
}

// GetHistoryBackend returns the configured persistence backend for search history.
// Unknown values fall back to memory.
func GetHistoryBackend() string {
	initConfig()
	backend := strings.ToLower(viper.GetString("history.backend"))
	switch backend {
	case HistoryBackendRedis, HistoryBackendSQLite, HistoryBackendMemory:
		return backend
	case "":
		return HistoryBackendRedis
	default:
		GetLogger().Warnw("Unknown history backend, using memory", "backend", backend)
		return HistoryBackendMemory
	}
}

// GetHistoryKey returns the storage key of the single history slot.
func GetHistoryKey() string {
	initConfig()
	key := viper.GetString("history.key")
	if key == "" {
		return "weather:history"
	}
	return key
}

func GetHistorySQLitePath() string {
	initConfig()
	path := viper.GetString("history.sqlite_path")
	if path == "" {
		return "weather_history.db"
	}
	return path
}

// GetDemoMode returns the demo mode requested at startup. Without a usable
// weather credential the service forces demo mode regardless of this value.
func GetDemoMode() bool {
	initConfig()
	return viper.GetBool("demo_mode")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	if serverPort == "" {
		return "8080"
	}
	return serverPort
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetServerTimeoutDuration parses server.<key> and falls back to def when unset or invalid.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	dur, err := time.ParseDuration(GetServerTimeout(key))
	if err != nil {
		return def
	}
	return dur
}

func GetTestRedisMockPort() string {
	initConfig()
	return viper.GetString("test.redis_mock_port")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	durStr := viper.GetString("rate_limiter.cleanup_timeout")
	if durStr == "" {
		durStr = "3m"
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return 3 * time.Minute
	}
	return dur
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the per-city rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}
