package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/retry"
)

// PurgeExpiredBatchesCommandHandler deletes expired batches with their rows,
// results and merged documents. Table rows go in one transaction; documents
// are removed afterwards and a failed removal is only recorded.
type PurgeExpiredBatchesCommandHandler struct {
	uowFactory UoWFactory
	documents  ports.DocumentStore
	incidents  IncidentRecorder
}

func NewPurgeExpiredBatchesCommandHandler(
	uowFactory UoWFactory,
	documents ports.DocumentStore,
	incidents IncidentRecorder,
) PurgeExpiredBatchesCommandHandler {
	return PurgeExpiredBatchesCommandHandler{uowFactory: uowFactory, documents: documents, incidents: incidents}
}

// Handle returns the ids of the purged batches.
func (h PurgeExpiredBatchesCommandHandler) Handle(ctx context.Context, cmd PurgeExpiredBatchesCommand) ([]kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var ids []kernel.UUID
	err := retry.Write(ctx, func() error {
		var err error
		ids, err = h.purge(ctx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := h.documents.Delete(ctx, id); err != nil {
			h.incidents.Record(ctx, incident.SourceRetention, &id, fmt.Errorf("delete document: %w", err))
		}
	}

	return ids, nil
}

func (h PurgeExpiredBatchesCommandHandler) purge(ctx context.Context, cmd PurgeExpiredBatchesCommand) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	expired, err := uow.BatchRepository().ListTerminalBefore(ctx, cmd.Cutoff())
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	ids := make([]kernel.UUID, 0, len(expired))
	for _, b := range expired {
		ids = append(ids, b.ID())
	}

	if err = uow.ResultRepository().DeleteByBatches(ctx, ids); err != nil {
		return nil, err
	}
	if err = uow.ShipmentRepository().DeleteByBatches(ctx, ids); err != nil {
		return nil, err
	}
	if err = uow.BatchRepository().Delete(ctx, ids); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}
