package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/adapter/genapi"
	"github.com/polkiloo/youwow/internal/adapter/notify"
	"github.com/polkiloo/youwow/internal/adapter/payment"
	"github.com/polkiloo/youwow/internal/app"
	"github.com/polkiloo/youwow/internal/config"
	"github.com/polkiloo/youwow/internal/generation"
	"github.com/polkiloo/youwow/internal/logger"
	"github.com/polkiloo/youwow/internal/metrics"
	"github.com/polkiloo/youwow/internal/pkg/auth"
	"github.com/polkiloo/youwow/internal/ratelimit"
	"github.com/polkiloo/youwow/internal/server/http/handlers"
	"github.com/polkiloo/youwow/internal/server/http/router"
	"github.com/polkiloo/youwow/internal/storage/postgres"
	"github.com/polkiloo/youwow/internal/usecase"
)

// Module composes the full service graph. Extra options are appended last,
// so tests can fx.Replace any dependency.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		payment.Module,
		genapi.Module,
		notify.Module,
		ratelimit.Module,
		usecase.Module,
		generation.Module,
		fx.Provide(
			func(a *usecase.AffiliateUseCase) generation.ConversionTracker { return a },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.GiftFacade) handlers.GiftFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// CoreModule is the storage and use case graph for one-shot administrative
// commands. The caller supplies *config.Config.
func CoreModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		usecase.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
