package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

type ExpiredBatchPurger interface {
	Handle(ctx context.Context, cmd commands.PurgeExpiredBatchesCommand) ([]kernel.UUID, error)
}

// RetentionJob deletes terminal batches older than the retention period
// together with their rows, results and stored document.
type RetentionJob struct {
	handler   ExpiredBatchPurger
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
	now       func() time.Time
}

func NewRetentionJob(handler ExpiredBatchPurger, retention time.Duration, schedule string, logger *slog.Logger) *RetentionJob {
	return &RetentionJob{
		handler:   handler,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "retention_job"),
		now:       time.Now,
	}
}

func (j *RetentionJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(ctx) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "Retention job started", "schedule", j.schedule, "retention", j.retention.String())
	return nil
}

// Run purges once and returns the purged batch ids.
func (j *RetentionJob) Run(ctx context.Context) []kernel.UUID {
	cmd, err := commands.NewPurgeExpiredBatchesCommand(j.now().Add(-j.retention))
	if err != nil {
		j.logger.ErrorContext(ctx, "Invalid retention cutoff", "error", err)
		return nil
	}

	ids, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Retention purge failed", "error", err)
		return nil
	}
	if len(ids) > 0 {
		j.logger.InfoContext(ctx, "Expired batches purged", "count", len(ids))
	}
	return ids
}

func (j *RetentionJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Retention job stopped")
}
