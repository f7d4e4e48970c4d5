package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/retry"
)

// IncidentRecorder writes operator-visible failures to the log and to the
// incidents table. Recording never fails the caller.
type IncidentRecorder struct {
	uowFactory IncidentUoWFactory
	logger     *slog.Logger
	now        func() time.Time
}

func NewIncidentRecorder(uowFactory IncidentUoWFactory, logger *slog.Logger) IncidentRecorder {
	return IncidentRecorder{uowFactory: uowFactory, logger: logger, now: time.Now}
}

// Record logs cause under source and stores it. batchID may be nil.
func (r IncidentRecorder) Record(ctx context.Context, source incident.Source, batchID *kernel.UUID, cause error) {
	if cause == nil {
		return
	}

	attrs := []any{"component", string(source), "error", cause}
	if batchID != nil {
		attrs = append(attrs, "batch_id", batchID.String())
	}
	r.logger.ErrorContext(ctx, "Incident", attrs...)

	if r.uowFactory == nil {
		return
	}

	i, err := incident.NewIncident(source, batchID, cause.Error(), r.now())
	if err != nil {
		r.logger.ErrorContext(ctx, "Invalid incident", "error", err)
		return
	}

	// Stored even when ctx is already cancelled.
	ctx = context.WithoutCancel(ctx)
	err = retry.Write(ctx, func() error {
		uow := r.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer func() {
			_ = uow.Rollback(ctx)
		}()

		if err := uow.IncidentRepository().Add(ctx, i); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to store incident", "error", err)
	}
}
