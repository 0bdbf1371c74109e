package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
)

// Module provides the result email notifier.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newNotifier(p notifierParams) Notifier {
	if len(p.Config.KafkaBrokers) == 0 {
		return NewLogNotifier(p.Logger)
	}

	n := NewKafkaNotifier(NewKafkaWriter(p.Config.KafkaBrokers, p.Config.KafkaEmailTopic), p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return n.Close()
		},
	})
	return n
}
