package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/polkiloo/youwow/internal/adapter/notify"
	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/metrics"
)

// OrderFinisher performs the terminal writes of an order.
type OrderFinisher interface {
	Complete(ctx context.Context, id, resultURL string, metadata json.RawMessage) (*model.Order, error)
	Fail(ctx context.Context, id, message string) (*model.Order, error)
}

// ConversionTracker credits the referring partner of a completed order.
type ConversionTracker interface {
	TrackConversion(ctx context.Context, orderID string, serviceType model.ServiceType, amount float64) error
}

// Runner executes the pipeline of a claimed order and records the outcome.
// Run never returns an error: every failure ends up on the order row.
type Runner struct {
	pipelines   map[model.ServiceType]Pipeline
	orders      OrderFinisher
	conversions ConversionTracker
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewRunner(orders OrderFinisher, conversions ConversionTracker, notifier notify.Notifier, m *metrics.Metrics, logger *slog.Logger, pipelines ...Pipeline) *Runner {
	r := &Runner{
		pipelines:   make(map[model.ServiceType]Pipeline, len(pipelines)),
		orders:      orders,
		conversions: conversions,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
	}
	for _, p := range pipelines {
		r.pipelines[p.Service()] = p
	}
	return r
}

// Supports reports whether a pipeline is registered for the service.
func (r *Runner) Supports(service model.ServiceType) bool {
	_, ok := r.pipelines[service]
	return ok
}

// Run generates the artifact of an order already claimed for processing.
func (r *Runner) Run(ctx context.Context, order *model.Order) {
	logger := r.logger.With(slog.String("order_id", order.ID), slog.String("service", string(order.ServiceType)))
	logger.Info("generation started")

	result, err := r.generate(ctx, order)

	// Terminal writes must land even when the worker is shutting down.
	ctx = context.WithoutCancel(ctx)
	if err != nil {
		r.fail(ctx, logger, order, err)
		return
	}

	if _, err := r.orders.Complete(ctx, order.ID, result.URL, result.Metadata); err != nil {
		r.fail(ctx, logger, order, stageErr(StageComplete, err))
		return
	}
	r.metrics.PipelineFinished(string(order.ServiceType), string(model.OrderStatusCompleted))
	logger.Info("generation completed", slog.String("result_url", result.URL))

	guard(logger, "conversion tracking failed", func() error {
		return r.conversions.TrackConversion(ctx, order.ID, order.ServiceType, order.Amount)
	})

	if order.CustomerEmail == "" {
		return
	}
	email := notify.ResultEmail{
		OrderID:     order.ID,
		To:          order.CustomerEmail,
		ServiceType: order.ServiceType,
		ResultURL:   result.URL,
	}
	if order.CustomerName != nil {
		email.Name = *order.CustomerName
	}
	guard(logger, "result email failed", func() error {
		return r.notifier.SendResult(ctx, email)
	})
}

// guard logs the error or panic of a side effect of an already completed order.
func guard(logger *slog.Logger, msg string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error(msg, slog.String("error", fmt.Sprintf("%v: %v", ErrPanic, p)))
		}
	}()
	if err := fn(); err != nil {
		logger.Error(msg, slog.String("error", err.Error()))
	}
}

func (r *Runner) generate(ctx context.Context, order *model.Order) (result *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	pipeline, ok := r.pipelines[order.ServiceType]
	if !ok {
		return nil, stageErr(StageDispatch, fmt.Errorf("%w: %s", domainErrors.ErrUnsupportedService, order.ServiceType))
	}
	return pipeline.Generate(ctx, order)
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, order *model.Order, cause error) {
	r.metrics.PipelineFinished(string(order.ServiceType), string(model.OrderStatusFailed))
	logger.Error("generation failed", slog.String("error", cause.Error()))

	if _, err := r.orders.Fail(ctx, order.ID, HumanMessage(cause)); err != nil {
		logger.Error("failed to record generation failure", slog.String("error", err.Error()))
	}
}
