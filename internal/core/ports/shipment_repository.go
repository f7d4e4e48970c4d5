package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
)

// ShipmentRepository stores the validated rows of a batch until it is purged.
type ShipmentRepository interface {
	AddAll(ctx context.Context, batchID kernel.UUID, rows []shipment.Row) error

	// ListByBatch returns rows in insertion order.
	ListByBatch(ctx context.Context, batchID kernel.UUID) ([]shipment.Row, error)

	DeleteByBatches(ctx context.Context, batchIDs []kernel.UUID) error
}
