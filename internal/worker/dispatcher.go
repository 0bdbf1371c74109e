package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/generation"
	"github.com/polkiloo/youwow/internal/metrics"
)

const sweepBatch = 100

// OrderRunner executes the generation of a claimed order.
type OrderRunner interface {
	Run(ctx context.Context, order *model.Order)
}

// StaleSweeper fails orders stuck in processing.
type StaleSweeper interface {
	FailStale(ctx context.Context, startedBefore time.Time, message string, limit int) ([]model.Order, error)
}

// Options sizes the pool and the stale order sweep.
type Options struct {
	Workers       int
	QueueSize     int
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

// Dispatcher runs claimed orders on a bounded worker pool.
type Dispatcher struct {
	runner  OrderRunner
	sweeper StaleSweeper
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	jobs   chan *model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewDispatcher constructs the worker pool. Non-positive sizes fall back to one.
func NewDispatcher(runner OrderRunner, sweeper StaleSweeper, opts Options, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	return &Dispatcher{
		runner:  runner,
		sweeper: sweeper,
		opts:    opts,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		jobs:    make(chan *model.Order, opts.QueueSize),
	}
}

// Start launches the workers and the sweep loop. They outlive ctx and
// stop only on Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}

	if d.sweeper != nil && d.opts.SweepInterval > 0 && d.opts.StaleAfter > 0 {
		d.wg.Add(1)
		go d.sweep(runCtx)
	}
}

// Stop cancels in-flight generations and waits for every worker. Orders
// still queued are handed to the runner with the cancelled context so
// each one reaches a terminal status.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Submit enqueues a claimed order without blocking. False means the
// dispatcher is stopped or the queue is full.
func (d *Dispatcher) Submit(order *model.Order) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel == nil {
		return false
	}

	select {
	case d.jobs <- order:
		d.metrics.SetQueueDepth(len(d.jobs))
		return true
	default:
		return false
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx)
			return
		case order := <-d.jobs:
			d.metrics.SetQueueDepth(len(d.jobs))
			d.runner.Run(ctx, order)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case order := <-d.jobs:
			d.logger.Warn("shutting down with queued order", slog.String("order_id", order.ID))
			d.runner.Run(ctx, order)
		default:
			d.metrics.SetQueueDepth(0)
			return
		}
	}
}

func (d *Dispatcher) sweep(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.failStale(ctx)
		}
	}
}

func (d *Dispatcher) failStale(ctx context.Context) {
	cutoff := d.now().Add(-d.opts.StaleAfter)
	failed, err := d.sweeper.FailStale(ctx, cutoff, generation.HumanMessage(generation.ErrTimeout), sweepBatch)
	if err != nil {
		d.logger.Error("stale order sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range failed {
		d.metrics.PipelineFinished(string(order.ServiceType), "stale")
		d.logger.Warn("stale order failed", slog.String("order_id", order.ID), slog.String("service", string(order.ServiceType)))
	}
}
