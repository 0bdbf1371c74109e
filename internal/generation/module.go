package generation

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/adapter/genapi"
	"github.com/polkiloo/youwow/internal/adapter/notify"
	"github.com/polkiloo/youwow/internal/config"
	"github.com/polkiloo/youwow/internal/domain/repository"
	"github.com/polkiloo/youwow/internal/metrics"
)

// Module wires the generation pipelines and their runner.
var Module = fx.Provide(
	DefaultVocabulary,
	newBudgets,
	newSongPipeline,
	newTarotPipeline,
	newRunner,
)

func newBudgets(cfg *config.Config) Budgets {
	return Budgets{
		Text:  Budget{Interval: cfg.TextPollInterval, Attempts: cfg.TextPollAttempts},
		Audio: Budget{Interval: cfg.AudioPollInterval, Attempts: cfg.AudioPollAttempts},
	}
}

type pipelineParams struct {
	fx.In

	Config  *config.Config
	Client  genapi.Client
	Orders  repository.OrderRepository
	Vocab   *Vocabulary
	Budgets Budgets
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func newSongPipeline(p pipelineParams) *SongPipeline {
	return NewSongPipeline(p.Client, p.Orders, p.Vocab, p.Budgets, p.Metrics, p.Logger)
}

func newTarotPipeline(p pipelineParams) *TarotPipeline {
	return NewTarotPipeline(p.Client, p.Budgets.Text, p.Config.AppURL, p.Metrics, p.Logger)
}

type runnerParams struct {
	fx.In

	Orders      repository.OrderRepository
	Conversions ConversionTracker
	Notifier    notify.Notifier
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Song        *SongPipeline
	Tarot       *TarotPipeline
}

func newRunner(p runnerParams) *Runner {
	return NewRunner(p.Orders, p.Conversions, p.Notifier, p.Metrics, p.Logger, p.Song, p.Tarot)
}
