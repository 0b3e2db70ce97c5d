//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/sunday/internal/bootstrap"
	"github.com/yanqian/sunday/internal/domain/advisor"
	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/profile"
	"github.com/yanqian/sunday/internal/domain/session"
	"github.com/yanqian/sunday/internal/infra/config"
	"github.com/yanqian/sunday/internal/infra/scheduler"
	"github.com/yanqian/sunday/internal/infra/weather/openmeteo"
	httpiface "github.com/yanqian/sunday/internal/interface/http"
	"github.com/yanqian/sunday/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideProfileConfig,
		provideConditionsConfig,
		provideSessionConfig,
		provideAdvisorConfig,
		provideWeatherClient,
		provideConditionsCache,
		providePostgresPool,
		provideProfileRepository,
		provideSessionRepository,
		provideSessionArchive,
		provideScheduler,
		profile.NewService,
		conditions.NewService,
		advisor.NewRateEvaluator,
		session.NewService,
		advisor.NewService,
		wire.Bind(new(conditions.Provider), new(*openmeteo.Client)),
		wire.Bind(new(advisor.ProfileReader), new(profile.Service)),
		wire.Bind(new(advisor.ConditionsSource), new(conditions.Service)),
		wire.Bind(new(advisor.ProgressReader), new(session.Service)),
		wire.Bind(new(session.RateEvaluator), new(*advisor.RateEvaluator)),
		wire.Bind(new(session.ProfileReader), new(profile.Service)),
		wire.Bind(new(scheduler.Refresher), new(conditions.Service)),
		wire.Bind(new(httpiface.TokenValidator), new(profile.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
