package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
http:
  address: ":9090"
auth:
  secret: file-secret
cache:
  ttl: 5m
session:
  timezone: Europe/Zurich
scheduler:
  enabled: true
  spec: "*/10 * * * *"
  locations:
    - name: zurich
      lat: 47.37
      lon: 8.54
      elevation: 408
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AUTH_SECRET", "env-secret")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "env-secret", cfg.Auth.Secret)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.Len(t, cfg.Scheduler.Locations, 1)
	require.NotNil(t, cfg.Scheduler.Locations[0].Elevation)
	require.Equal(t, 408.0, *cfg.Scheduler.Locations[0].Elevation)
	require.Equal(t, "Europe/Zurich", cfg.SessionLocation().String())
	require.Equal(t, 1000, cfg.Profile.DefaultGoalIU)
	require.Equal(t, time.Second, cfg.Session.TickInterval)
}

func TestSampleConfigWarmsCoordinateOnlyKeys(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join("..", "..", "..", "configs", "config.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Scheduler.Locations)
	for _, loc := range cfg.Scheduler.Locations {
		require.Nil(t, loc.Elevation, "location %s", loc.Name)
	}
}

func TestValidateRejectsBrokenSettings(t *testing.T) {
	cases := map[string]func(c *Config){
		"missing secret":   func(c *Config) { c.Auth.Secret = "" },
		"bad timezone":     func(c *Config) { c.Session.Timezone = "Mars/Olympus" },
		"valkey no addr":   func(c *Config) { c.Cache.Valkey.Enabled = true },
		"archive bucket":   func(c *Config) { c.Archive.Enabled = true; c.Archive.Endpoint = "s3.local" },
		"bad cron":         func(c *Config) { c.Scheduler.Enabled = true; c.Scheduler.Spec = "often" },
		"goal":             func(c *Config) { c.Profile.DefaultGoalIU = 0 },
		"rate limit burst": func(c *Config) { c.HTTP.RateLimit.Burst = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.Secret = "secret"
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := defaultConfig()
	cfg.Auth.Secret = "secret"
	require.NoError(t, cfg.Validate())
}
