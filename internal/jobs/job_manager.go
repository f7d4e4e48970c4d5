package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Schedules configures the cron jobs.
type Schedules struct {
	Heartbeat string
	Retention string
	// WorkerStaleAfter is how long a worker loop may go without ticking
	// before the heartbeat job stops reporting it. Zero means
	// DefaultWorkerStaleAfter.
	WorkerStaleAfter time.Duration
	// RetentionPeriod is the age after which terminal batches are purged.
	RetentionPeriod time.Duration
}

const DefaultWorkerStaleAfter = 2 * time.Minute

// JobManager coordinates all background jobs in the application.
// Provides a unified interface to start and stop them.
type JobManager struct {
	workerPool   *WorkerPool
	heartbeatJob *HeartbeatJob
	retentionJob *RetentionJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	workerPool *WorkerPool,
	heartbeatHandler HeartbeatRecorder,
	purgeHandler ExpiredBatchPurger,
	schedules Schedules,
	logger *slog.Logger,
) (*JobManager, error) {
	if schedules.RetentionPeriod <= 0 {
		return nil, fmt.Errorf("retention period must be positive, got %s", schedules.RetentionPeriod)
	}

	staleAfter := schedules.WorkerStaleAfter
	if staleAfter <= 0 {
		staleAfter = DefaultWorkerStaleAfter
	}
	live := func() []Worker { return workerPool.LiveWorkers(staleAfter) }

	return &JobManager{
		workerPool:   workerPool,
		heartbeatJob: NewHeartbeatJob(heartbeatHandler, live, schedules.Heartbeat, logger),
		retentionJob: NewRetentionJob(purgeHandler, schedules.RetentionPeriod, schedules.Retention, logger),
	}, nil
}

// StartAll starts all jobs. The pool goes first so the first heartbeat round
// already sees its workers.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll(ctx context.Context) error {
	if err := jm.workerPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	if err := jm.heartbeatJob.Start(ctx); err != nil {
		jm.workerPool.Stop()
		return fmt.Errorf("failed to start heartbeat job: %w", err)
	}

	if err := jm.retentionJob.Start(ctx); err != nil {
		// Stop already started jobs if this one fails
		jm.heartbeatJob.Stop()
		jm.workerPool.Stop()
		return fmt.Errorf("failed to start retention job: %w", err)
	}

	return nil
}

// StopAll stops all jobs gracefully. In-flight batches are finished first.
func (jm *JobManager) StopAll() {
	jm.workerPool.Stop()
	jm.retentionJob.Stop()
	jm.heartbeatJob.Stop()
}
