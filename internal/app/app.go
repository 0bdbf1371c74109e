package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
	"github.com/polkiloo/youwow/internal/domain/repository"
	"github.com/polkiloo/youwow/internal/generation"
	"github.com/polkiloo/youwow/internal/metrics"
	"github.com/polkiloo/youwow/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewGiftFacade,
		newHTTPServer,
		newDispatcher,
		func(d *worker.Dispatcher) Dispatcher { return d },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type dispatcherParams struct {
	fx.In

	Runner  *generation.Runner
	Orders  repository.OrderRepository
	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func newDispatcher(p dispatcherParams) *worker.Dispatcher {
	return worker.NewDispatcher(p.Runner, p.Orders, worker.Options{
		Workers:       p.Config.WorkerPoolSize,
		QueueSize:     p.Config.QueueSize,
		SweepInterval: p.Config.StaleSweepInterval,
		StaleAfter:    p.Config.StaleProcessingAfter,
	}, p.Metrics, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.Dispatcher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting youwow", slog.String("addr", p.Server.Addr))
			p.Dispatcher.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			// Stop accepting webhooks before the pool drains its queue.
			serverErr := p.Server.Shutdown(shutdownCtx)
			p.Dispatcher.Stop()

			if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
				return serverErr
			}
			p.Logger.Info("youwow stopped")
			return nil
		},
	})
}
