package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultEnv             = "development"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8080
	defaultAPIBaseURL      = "https://api.coingecko.com/api/v3"
	defaultVsCurrency      = "usd"
	defaultCacheTTLSeconds = 300
	defaultCacheDir        = ".cache"
	defaultSnapshotDir     = "data"
	defaultPortfolioPath   = "portfolio.db"
	defaultRedisDB         = 0
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env       string
	HTTP      HTTPConfig
	API       APIConfig
	Cache     CacheConfig
	Snapshot  SnapshotConfig
	Portfolio PortfolioConfig
	Redis     RedisConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// APIConfig stores the upstream market data API parameters. The key is
// optional: without one requests go out unauthenticated.
type APIConfig struct {
	BaseURL    string
	Key        string
	VsCurrency string
}

// CacheConfig stores cache behavior for the client-side TTL store.
type CacheConfig struct {
	TTLSeconds int
	Dir        string
}

// SnapshotConfig points at the bundled JSON fixture directory.
type SnapshotConfig struct {
	Dir string
}

// PortfolioConfig locates the local holdings database.
type PortfolioConfig struct {
	Path string
}

// RedisConfig stores the optional HTTP response cache connection. An
// empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	return &Config{
		Env:  getString("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{Host: host, Port: port},
		API: APIConfig{
			BaseURL:    getString("API_BASE_URL", defaultAPIBaseURL),
			Key:        os.Getenv("API_KEY"),
			VsCurrency: getString("DEFAULT_CURRENCY", defaultVsCurrency),
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
			Dir:        getString("CACHE_DIR", defaultCacheDir),
		},
		Snapshot: SnapshotConfig{
			Dir: getString("SNAPSHOT_DIR", defaultSnapshotDir),
		},
		Portfolio: PortfolioConfig{
			Path: getString("PORTFOLIO_DB", defaultPortfolioPath),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}
