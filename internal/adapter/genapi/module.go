package genapi

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
)

// Module exposes generation client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.GenAPI.BaseURL, p.Config.GenAPI.APIKey, p.Config.GenAPI.Model, p.Logger)
}
