package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"
)

// ResultRepository stores the append-only per-row outcomes of a batch.
type ResultRepository interface {
	Add(ctx context.Context, r *result.Record) error

	// ListByBatch returns records ordered by row number.
	ListByBatch(ctx context.Context, batchID kernel.UUID) ([]*result.Record, error)

	// MarkConfirmed sets CONFIRMED on the batch's labelled records carrying one
	// of the tracking numbers and returns the number of rows changed.
	MarkConfirmed(ctx context.Context, batchID kernel.UUID, trackingNumbers []string) (int64, error)

	DeleteByBatches(ctx context.Context, batchIDs []kernel.UUID) error
}
