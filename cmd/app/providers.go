package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/sunday/internal/domain/advisor"
	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/profile"
	"github.com/yanqian/sunday/internal/domain/session"
	"github.com/yanqian/sunday/internal/infra/conditionscache"
	"github.com/yanqian/sunday/internal/infra/config"
	"github.com/yanqian/sunday/internal/infra/profilerepo"
	"github.com/yanqian/sunday/internal/infra/scheduler"
	"github.com/yanqian/sunday/internal/infra/sessionarchive"
	"github.com/yanqian/sunday/internal/infra/sessionrepo"
	"github.com/yanqian/sunday/internal/infra/weather/openmeteo"
)

func provideProfileConfig(cfg *config.Config) profile.Config {
	return profile.Config{
		Secret:        cfg.Auth.Secret,
		TokenTTL:      cfg.Auth.TokenTTL,
		DefaultGoalIU: cfg.Profile.DefaultGoalIU,
	}
}

func provideConditionsConfig(cfg *config.Config) conditions.Config {
	return conditions.Config{CacheTTL: cfg.Cache.TTL}
}

func provideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		TickInterval: cfg.Session.TickInterval,
		RateRefresh:  cfg.Session.RateRefresh,
		Location:     cfg.SessionLocation(),
	}
}

func provideAdvisorConfig(cfg *config.Config) advisor.Config {
	return advisor.Config{ApplyTimeOfDay: cfg.Advisor.ApplyTimeOfDay}
}

func provideWeatherClient(cfg *config.Config, logger *slog.Logger) *openmeteo.Client {
	return openmeteo.NewClient(openmeteo.Options{
		BaseURL:     cfg.Weather.BaseURL,
		Timeout:     cfg.Weather.Timeout,
		MaxRetries:  cfg.Weather.MaxRetries,
		MaxFailures: cfg.Weather.Breaker.MaxFailures,
		OpenTimeout: cfg.Weather.Breaker.OpenTimeout,
	}, logger)
}

func provideConditionsCache(cfg *config.Config, logger *slog.Logger) conditions.Cache {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return conditionscache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return conditionscache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("valkey forecast cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return conditionscache.NewValkeyCache(client, cfg.Cache.Valkey.Prefix)
		}
	}
	return conditionscache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// providePostgresPool returns nil when postgres is not configured or unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideProfileRepository(pool *pgxpool.Pool) profile.Repository {
	if pool == nil {
		return profilerepo.NewMemoryRepository()
	}
	return profilerepo.NewPostgresRepository(pool)
}

func provideSessionRepository(pool *pgxpool.Pool) session.Repository {
	if pool == nil {
		return sessionrepo.NewMemoryRepository()
	}
	return sessionrepo.NewPostgresRepository(pool)
}

func provideSessionArchive(cfg *config.Config, logger *slog.Logger) session.Archive {
	if !cfg.Archive.Enabled {
		return sessionarchive.NewMemoryArchive()
	}
	archive, err := sessionarchive.NewS3Archive(cfg.Archive.Endpoint, cfg.Archive.AccessKey, cfg.Archive.SecretKey, cfg.Archive.Bucket, cfg.Archive.Region, logger)
	if err != nil {
		logger.Error("failed to initialize session archive, using memory archive", "error", err)
		return sessionarchive.NewMemoryArchive()
	}
	logger.Info("session archive enabled", "bucket", cfg.Archive.Bucket)
	return archive
}

func provideScheduler(cfg *config.Config, refresher scheduler.Refresher, logger *slog.Logger) (*scheduler.Scheduler, error) {
	targets := make([]scheduler.Target, 0, len(cfg.Scheduler.Locations))
	for _, loc := range cfg.Scheduler.Locations {
		targets = append(targets, scheduler.Target{
			Name: loc.Name,
			Location: conditions.Location{
				Latitude:        loc.Latitude,
				Longitude:       loc.Longitude,
				ElevationMeters: loc.Elevation,
			},
		})
	}
	return scheduler.New(cfg.Scheduler.Enabled, cfg.Scheduler.Spec, targets, refresher, logger)
}
