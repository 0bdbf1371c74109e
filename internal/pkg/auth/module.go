package auth

import (
	"time"

	"github.com/polkiloo/youwow/internal/config"
	"go.uber.org/fx"
)

// AdminTokenTTL bounds the lifetime of an admin panel session.
const AdminTokenTTL = 12 * time.Hour

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.AdminTokenSecret, Options{TTL: AdminTokenTTL})
}
