package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Profile   ProfileConfig   `yaml:"profile"`
	Weather   WeatherConfig   `yaml:"weather"`
	Cache     CacheConfig     `yaml:"cache"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Session   SessionConfig   `yaml:"session"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig controls access token issuance.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// ProfileConfig holds profile defaults.
type ProfileConfig struct {
	DefaultGoalIU int `yaml:"defaultGoalIU"`
}

// WeatherConfig points at the upstream UV forecast API.
type WeatherConfig struct {
	BaseURL    string        `yaml:"baseUrl"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries uint64        `yaml:"maxRetries"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the upstream circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"maxFailures"`
	OpenTimeout time.Duration `yaml:"openTimeout"`
}

// CacheConfig controls how forecasts are cached.
type CacheConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ArchiveConfig points at the S3 compatible bucket receiving finished sessions.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// SessionConfig controls live tracking sessions.
type SessionConfig struct {
	TickInterval time.Duration `yaml:"tickInterval"`
	RateRefresh  time.Duration `yaml:"rateRefresh"`
	Timezone     string        `yaml:"timezone"`
}

// AdvisorConfig toggles optional model factors.
type AdvisorConfig struct {
	ApplyTimeOfDay bool `yaml:"applyTimeOfDay"`
}

// SchedulerConfig drives the background forecast refresh.
type SchedulerConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Spec      string          `yaml:"spec"`
	Locations []WatchLocation `yaml:"locations"`
}

// WatchLocation is a coordinate kept warm in the forecast cache.
type WatchLocation struct {
	Name      string   `yaml:"name"`
	Latitude  float64  `yaml:"lat"`
	Longitude float64  `yaml:"lon"`
	Elevation *float64 `yaml:"elevation"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("PROFILE_DEFAULT_GOAL_IU"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Profile.DefaultGoalIU = parsed
		}
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("WEATHER_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Weather.MaxRetries = parsed
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_REGION"); v != "" {
		cfg.Archive.Region = v
	}
	if v := os.Getenv("SESSION_TIMEZONE"); v != "" {
		cfg.Session.Timezone = v
	}
	if v := os.Getenv("SESSION_RATE_REFRESH"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Session.RateRefresh = parsed
		}
	}
	if v := os.Getenv("ADVISOR_APPLY_TIME_OF_DAY"); v != "" {
		cfg.Advisor.ApplyTimeOfDay = parseBool(v)
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		cfg.Scheduler.Enabled = parseBool(v)
	}
	if v := os.Getenv("SCHEDULER_SPEC"); v != "" {
		cfg.Scheduler.Spec = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/profiles",
					"/api/v1/me/sessions",
				},
			},
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Auth: AuthConfig{
			TokenTTL: 30 * 24 * time.Hour,
		},
		Profile: ProfileConfig{
			DefaultGoalIU: 1000,
		},
		Weather: WeatherConfig{
			BaseURL:    "https://api.open-meteo.com/v1/forecast",
			Timeout:    10 * time.Second,
			MaxRetries: 2,
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Cache: CacheConfig{
			TTL: 15 * time.Minute,
			Valkey: ValkeyConfig{
				Prefix: "sunday",
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Session: SessionConfig{
			TickInterval: time.Second,
			RateRefresh:  time.Minute,
			Timezone:     "UTC",
		},
		Scheduler: SchedulerConfig{
			Spec: "@every 15m",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Profile.DefaultGoalIU <= 0 {
		return errors.New("profile.defaultGoalIU must be positive")
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.endpoint and archive.bucket are required when archive is enabled")
		}
	}
	if c.Session.TickInterval <= 0 {
		return errors.New("session.tickInterval must be positive")
	}
	if c.Session.RateRefresh <= 0 {
		return errors.New("session.rateRefresh must be positive")
	}
	if _, err := time.LoadLocation(c.Session.Timezone); err != nil {
		return fmt.Errorf("session.timezone: %w", err)
	}
	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Spec); err != nil {
			return fmt.Errorf("scheduler.spec: %w", err)
		}
		for i, loc := range c.Scheduler.Locations {
			if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
				return fmt.Errorf("scheduler.locations[%d] has out of range coordinates", i)
			}
		}
	}
	return nil
}

// SessionLocation resolves the timezone used for daily totals.
func (c *Config) SessionLocation() *time.Location {
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
