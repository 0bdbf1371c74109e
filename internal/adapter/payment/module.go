package payment

import (
	"log/slog"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
)

const requestTimeout = 15 * time.Second

// Module exposes the provider registry to fx graph.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newRegistry(p registryParams) (*Registry, error) {
	client := &http.Client{Timeout: requestTimeout}
	return NewRegistry(p.Config.Payment, p.Config.AppURL, client, p.Logger)
}
