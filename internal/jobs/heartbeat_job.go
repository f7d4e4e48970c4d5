package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type HeartbeatRecorder interface {
	Handle(ctx context.Context, cmd commands.RecordHeartbeatCommand) error
}

// HeartbeatJob records a heartbeat for every worker the workers func reports
// as live, so operators can tell live workers from dead ones.
type HeartbeatJob struct {
	handler  HeartbeatRecorder
	workers  func() []Worker
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
}

func NewHeartbeatJob(handler HeartbeatRecorder, workers func() []Worker, schedule string, logger *slog.Logger) *HeartbeatJob {
	return &HeartbeatJob{
		handler:  handler,
		workers:  workers,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "heartbeat_job"),
		now:      time.Now,
	}
}

// Start records one round immediately, then one per schedule tick.
func (j *HeartbeatJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(ctx) }); err != nil {
		return err
	}

	j.Run(ctx)
	j.cron.Start()
	j.logger.InfoContext(ctx, "Heartbeat job started", "schedule", j.schedule)
	return nil
}

// Run records one heartbeat per live worker.
func (j *HeartbeatJob) Run(ctx context.Context) {
	at := j.now()
	for _, w := range j.workers() {
		cmd, err := commands.NewRecordHeartbeatCommand(w.ID, w.Lane, at)
		if err != nil {
			j.logger.ErrorContext(ctx, "Invalid heartbeat", "worker_id", w.ID, "error", err)
			continue
		}
		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Heartbeat failed", "worker_id", w.ID, "error", err)
		}
	}
}

func (j *HeartbeatJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Heartbeat job stopped")
}
