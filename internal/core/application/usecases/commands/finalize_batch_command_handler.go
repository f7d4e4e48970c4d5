package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/retry"
)

// ErrBatchNotProcessing is returned when the batch left PROCESSING before it
// could be finalized.
var ErrBatchNotProcessing = errors.New("batch is not processing")

// FinalizeBatchCommandHandler sets the terminal status of a processed batch
// and credits the owner for every unit that produced no label. Status, success
// count and refund are written in one transaction.
type FinalizeBatchCommandHandler struct {
	uowFactory UoWFactory
	events     ports.EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewFinalizeBatchCommandHandler(
	uowFactory UoWFactory,
	events ports.EventPublisher,
	logger *slog.Logger,
) FinalizeBatchCommandHandler {
	return FinalizeBatchCommandHandler{
		uowFactory: uowFactory,
		events:     events,
		logger:     logger.With("component", "batch_finalizer"),
		now:        time.Now,
	}
}

// Handle returns the finalized batch and the refunded amount.
func (h FinalizeBatchCommandHandler) Handle(ctx context.Context, cmd FinalizeBatchCommand) (*batch.Batch, kernel.Cents, error) {
	if err := cmd.Validate(); err != nil {
		return nil, 0, err
	}

	var (
		finalized *batch.Batch
		refund    kernel.Cents
	)
	err := retry.Write(ctx, func() error {
		var err error
		finalized, refund, err = h.finalize(ctx, cmd)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	h.logger.InfoContext(ctx, "Batch finalized",
		"batch_id", finalized.ID().String(),
		"status", finalized.Status().String(),
		"success", finalized.SuccessCount(),
		"requested", finalized.RequestedCount(),
		"refund", refund.String())

	publish(ctx, h.events, h.logger, ports.BatchEvent{
		Type:           ports.BatchFinalized,
		BatchID:        finalized.ID().String(),
		Owner:          finalized.Owner().String(),
		Status:         finalized.Status().String(),
		RequestedCount: finalized.RequestedCount(),
		SuccessCount:   finalized.SuccessCount(),
		RefundCents:    int64(refund),
		At:             h.now().UTC(),
	})

	return finalized, refund, nil
}

func (h FinalizeBatchCommandHandler) finalize(ctx context.Context, cmd FinalizeBatchCommand) (*batch.Batch, kernel.Cents, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()
	b, err := batchRepo.Get(ctx, cmd.BatchID())
	if err != nil {
		return nil, 0, err
	}

	refund, err := b.Finalize(min(cmd.SuccessCount(), b.RequestedCount()))
	if err != nil {
		return nil, 0, err
	}

	ok, err := batchRepo.Update(ctx, b, batch.Processing)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrBatchNotProcessing
	}

	if refund > 0 {
		if err = uow.LedgerRepository().Credit(ctx, b.Owner(), refund); err != nil {
			return nil, 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return b, refund, nil
}

// publish is best effort; a nil publisher disables events.
func publish(ctx context.Context, events ports.EventPublisher, logger *slog.Logger, e ports.BatchEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "type", string(e.Type), "batch_id", e.BatchID, "error", err)
	}
}
