package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/services"
)

type BatchProcessor interface {
	Handle(ctx context.Context, cmd commands.ProcessBatchCommand) (*batch.Batch, error)
}

// Worker identifies one pool goroutine.
type Worker struct {
	ID   string
	Lane services.Lane
}

// WorkerPool runs independent worker loops. Each loop claims at most one batch
// at a time; after finishing a batch it polls again immediately, otherwise it
// waits for the poll interval.
//
// Stop ends polling but lets in-flight batches finish, so a shutdown never
// turns a healthy batch into a crash.
type WorkerPool struct {
	processor    BatchProcessor
	workers      []Worker
	pollInterval time.Duration
	logger       *slog.Logger

	// liveness[i] belongs to workers[i].
	liveness []liveness
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// liveness is written by a worker loop and read by the heartbeat job.
type liveness struct {
	lastTick atomic.Int64 // unix nanos, 0 before the first tick
	busy     atomic.Bool
}

// NewWorkerPool creates general general-lane workers and singleItem
// single-item-lane workers. Worker ids are prefixed with instance.
func NewWorkerPool(
	processor BatchProcessor,
	instance string,
	general, singleItem int,
	pollInterval time.Duration,
	logger *slog.Logger,
) (*WorkerPool, error) {
	if general < 1 {
		return nil, fmt.Errorf("at least one general worker is required, got %d", general)
	}
	if singleItem < 0 {
		return nil, fmt.Errorf("single item workers must not be negative, got %d", singleItem)
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", pollInterval)
	}

	workers := make([]Worker, 0, general+singleItem)
	for i := 1; i <= general; i++ {
		workers = append(workers, Worker{ID: fmt.Sprintf("%s-general-%d", instance, i), Lane: services.GeneralLane})
	}
	for i := 1; i <= singleItem; i++ {
		workers = append(workers, Worker{ID: fmt.Sprintf("%s-single-%d", instance, i), Lane: services.SingleItemLane})
	}

	return &WorkerPool{
		processor:    processor,
		workers:      workers,
		pollInterval: pollInterval,
		logger:       logger.With("component", "worker_pool"),
		liveness:     make([]liveness, len(workers)),
		now:          time.Now,
	}, nil
}

// Workers returns the pool members.
func (p *WorkerPool) Workers() []Worker {
	return append([]Worker(nil), p.workers...)
}

// LiveWorkers returns the members whose loop ticked within maxAge or is
// processing a batch right now. A loop that stopped or never started is left
// out, so its heartbeat goes stale.
func (p *WorkerPool) LiveWorkers(maxAge time.Duration) []Worker {
	cutoff := p.now().Add(-maxAge).UnixNano()
	live := make([]Worker, 0, len(p.workers))
	for i, w := range p.workers {
		l := &p.liveness[i]
		last := l.lastTick.Load()
		if l.busy.Load() || (last != 0 && last >= cutoff) {
			live = append(live, w)
		}
	}
	return live
}

func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("worker pool already started")
	}

	ctx, p.cancel = context.WithCancel(ctx)
	started := p.now().UnixNano()
	for i := range p.workers {
		p.liveness[i].lastTick.Store(started)
		p.wg.Add(1)
		go p.loop(ctx, i)
	}

	p.logger.InfoContext(ctx, "Worker pool started", "workers", len(p.workers), "poll_interval", p.pollInterval.String())
	return nil
}

// Stop cancels polling and waits for every loop to return.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) loop(ctx context.Context, i int) {
	w, l := p.workers[i], &p.liveness[i]
	defer p.wg.Done()
	defer l.lastTick.Store(0)
	logger := p.logger.With("worker_id", w.ID, "lane", string(w.Lane))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		l.lastTick.Store(p.now().UnixNano())
		l.busy.Store(true)
		processed := p.tick(ctx, w, logger)
		l.busy.Store(false)
		l.lastTick.Store(p.now().UnixNano())

		next := p.pollInterval
		if processed {
			next = 0
		}
		timer.Reset(next)
	}
}

// tick reports whether a batch was processed.
func (p *WorkerPool) tick(ctx context.Context, w Worker, logger *slog.Logger) (processed bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Worker tick panicked", "panic", r)
			processed = false
		}
	}()

	cmd, err := commands.NewProcessBatchCommand(w.Lane)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid worker lane", "error", err)
		return false
	}

	b, err := p.processor.Handle(context.WithoutCancel(ctx), cmd)
	switch {
	case errors.Is(err, commands.ErrNoBatchQueued),
		errors.Is(err, commands.ErrWorkerPaused),
		errors.Is(err, commands.ErrClaimConflict):
		return false
	case err != nil:
		logger.ErrorContext(ctx, "Batch processing failed", "error", err)
		return false
	}

	logger.InfoContext(ctx, "Batch processed", "batch_id", b.ID().String(), "status", b.Status().String(),
		"success_count", b.SuccessCount(), "requested_count", b.RequestedCount())
	return true
}
