package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/youwow/internal/adapter/genapi"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/metrics"
)

// Pipeline stages, used in errors, logs and metrics.
const (
	StageInput    = "input"
	StageText     = "text"
	StageAudio    = "audio"
	StageDispatch = "dispatch"
	StageComplete = "complete"
)

// Checkpoint steps written to result_metadata.step.
const (
	StepTextGenerated  = "text_generated"
	StepAudioRequested = "audio_requested"
	StepCompleted      = "completed"
)

// Checkpointer merges progress into a processing order.
type Checkpointer interface {
	Checkpoint(ctx context.Context, id string, metadata json.RawMessage) error
}

// Result is the artifact produced for an order.
type Result struct {
	URL      string
	Metadata json.RawMessage
}

// Pipeline generates the artifact for one service type.
type Pipeline interface {
	Service() model.ServiceType
	Generate(ctx context.Context, order *model.Order) (*Result, error)
}

// Budgets holds the polling limits of both stages.
type Budgets struct {
	Text  Budget
	Audio Budget
}

// SongPipeline writes lyrics, then synthesizes the track.
type SongPipeline struct {
	client  genapi.Client
	store   Checkpointer
	vocab   *Vocabulary
	budgets Budgets
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewSongPipeline(client genapi.Client, store Checkpointer, vocab *Vocabulary, budgets Budgets, m *metrics.Metrics, logger *slog.Logger) *SongPipeline {
	return &SongPipeline{client: client, store: store, vocab: vocab, budgets: budgets, metrics: m, logger: logger}
}

func (p *SongPipeline) Service() model.ServiceType { return model.ServiceSong }

func (p *SongPipeline) Generate(ctx context.Context, order *model.Order) (*Result, error) {
	in, err := ParseSongInput(order.InputData)
	if err != nil {
		return nil, stageErr(StageInput, err)
	}

	started := time.Now()
	text, err := generateText(ctx, p.client, BuildSongPrompt(in), p.budgets.Text, p.logger)
	p.metrics.ObserveStage(StageText, time.Since(started))
	if err != nil {
		return nil, stageErr(StageText, err)
	}
	if err := checkpoint(ctx, p.store, order.ID, map[string]any{"step": StepTextGenerated, "songText": text}); err != nil {
		return nil, stageErr(StageText, err)
	}

	req := genapi.AudioRequest{
		Title:  SongTitle(text, firstNonEmpty(in.SongName, in.RecipientName)),
		Tags:   p.vocab.Tags(in.Genre, in.Voice, in.Mood),
		Lyrics: text,
	}

	started = time.Now()
	audio, err := p.generateAudio(ctx, order.ID, req)
	p.metrics.ObserveStage(StageAudio, time.Since(started))
	if err != nil {
		return nil, stageErr(StageAudio, err)
	}

	metadata, err := json.Marshal(map[string]any{
		"step":        StepCompleted,
		"songText":    text,
		"title":       req.Title,
		"tags":        req.Tags,
		"audioResult": audio.raw,
	})
	if err != nil {
		return nil, stageErr(StageComplete, err)
	}
	return &Result{URL: audio.url, Metadata: metadata}, nil
}

type audioResult struct {
	url string
	raw json.RawMessage
}

func (p *SongPipeline) generateAudio(ctx context.Context, orderID string, req genapi.AudioRequest) (audioResult, error) {
	id, err := p.client.SubmitAudio(ctx, req)
	if err != nil {
		return audioResult{}, fmt.Errorf("%w: submit audio: %v", ErrBackend, err)
	}
	if err := checkpoint(ctx, p.store, orderID, map[string]any{"step": StepAudioRequested, "audioRequestId": id}); err != nil {
		return audioResult{}, err
	}

	return await(ctx, p.client, id, p.budgets.Audio, p.logger, func(job *genapi.Job) (audioResult, error) {
		url, ok := ExtractAudioURL(job.Raw)
		if !ok {
			return audioResult{}, ErrNoAudio
		}
		return audioResult{url: url, raw: job.Raw}, nil
	})
}

// TarotPipeline produces a text reading shown on the result page.
type TarotPipeline struct {
	client  genapi.Client
	budget  Budget
	appURL  string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewTarotPipeline(client genapi.Client, budget Budget, appURL string, m *metrics.Metrics, logger *slog.Logger) *TarotPipeline {
	return &TarotPipeline{client: client, budget: budget, appURL: strings.TrimRight(appURL, "/"), metrics: m, logger: logger}
}

func (p *TarotPipeline) Service() model.ServiceType { return model.ServiceTarot }

func (p *TarotPipeline) Generate(ctx context.Context, order *model.Order) (*Result, error) {
	in, err := ParseTarotInput(order.InputData)
	if err != nil {
		return nil, stageErr(StageInput, err)
	}

	started := time.Now()
	text, err := generateText(ctx, p.client, BuildTarotPrompt(in), p.budget, p.logger)
	p.metrics.ObserveStage(StageText, time.Since(started))
	if err != nil {
		return nil, stageErr(StageText, err)
	}

	metadata, err := json.Marshal(map[string]any{"step": StepCompleted, "reading": text})
	if err != nil {
		return nil, stageErr(StageComplete, err)
	}
	return &Result{URL: p.appURL + "/result/" + order.ID, Metadata: metadata}, nil
}

func generateText(ctx context.Context, client genapi.Client, prompt string, b Budget, logger *slog.Logger) (string, error) {
	id, err := client.SubmitText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: submit text: %v", ErrBackend, err)
	}
	return await(ctx, client, id, b, logger, func(job *genapi.Job) (string, error) {
		text := job.Text()
		if text == "" {
			return "", ErrEmptyText
		}
		return text, nil
	})
}

// await polls a backend job until it succeeds and read accepts it. Transport
// errors only cost an attempt; a rate limit also waits out Retry-After, but
// never past the budget ceiling.
func await[T any](ctx context.Context, client genapi.Client, id string, b Budget, logger *slog.Logger, read func(*genapi.Job) (T, error)) (T, error) {
	deadline := time.Now().Add(b.Ceiling())
	return Poll(ctx, b, func(ctx context.Context) (T, bool, error) {
		var zero T

		job, err := client.Fetch(ctx, id)
		if err != nil {
			if errors.Is(err, genapi.ErrUnauthorized) {
				return zero, false, fmt.Errorf("%w: %v", ErrBackend, err)
			}
			var limited genapi.TooManyRequestsError
			if errors.As(err, &limited) {
				wait := min(limited.RetryAfter, time.Until(deadline))
				logger.Warn("generation backend rate limited", slog.String("request_id", id), slog.Duration("retry_after", wait))
				if err := sleep(ctx, wait); err != nil {
					return zero, false, err
				}
				return zero, false, nil
			}
			logger.Warn("generation poll failed", slog.String("request_id", id), slog.String("error", err.Error()))
			return zero, false, nil
		}

		switch job.Status {
		case genapi.JobFailed:
			return zero, false, fmt.Errorf("%w: %s", ErrBackend, job.Error)
		case genapi.JobSuccess:
			v, err := read(job)
			if err != nil {
				return zero, false, err
			}
			return v, true, nil
		default:
			return zero, false, nil
		}
	})
}

func checkpoint(ctx context.Context, store Checkpointer, orderID string, progress map[string]any) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	if err := store.Checkpoint(ctx, orderID, data); err != nil {
		return fmt.Errorf("checkpoint %s: %w", progress["step"], err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
