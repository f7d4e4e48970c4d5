// Package ports defines the contracts between the fulfillment core and its
// infrastructure: Job Store repositories behind a UnitOfWork, and gateways to
// the rendering service, the marketplace, the dedup cache, document storage
// and the event sink.
package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
)

// BatchRepository defines the persistence contract for batch aggregates.
// Status changes are conditional writes so that concurrent workers and
// confirmation runs never overwrite each other.
type BatchRepository interface {
	// Add persists a new batch.
	Add(ctx context.Context, b *batch.Batch) error

	// Get retrieves a batch by id.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error)

	// ListByStatus returns batches in status ordered by submission time.
	ListByStatus(ctx context.Context, status batch.Status) ([]*batch.Batch, error)

	// Update writes the status and success count of b only if the stored status
	// still equals expected. It reports whether the row was written.
	//
	// Example:
	//   if err := b.Claim(); err != nil { return err }
	//   ok, err := repo.Update(ctx, b, batch.Queued)
	//   if !ok { /* another worker claimed it first */ }
	Update(ctx context.Context, b *batch.Batch, expected batch.Status) (bool, error)

	// IncrementSuccess adds one to the live success counter unless it already
	// equals the requested count. It reports whether the counter moved.
	IncrementSuccess(ctx context.Context, id kernel.UUID) (bool, error)

	// ListTerminalBefore returns terminal batches submitted before cutoff.
	ListTerminalBefore(ctx context.Context, cutoff time.Time) ([]*batch.Batch, error)

	// Delete removes batches by id.
	Delete(ctx context.Context, ids []kernel.UUID) error
}
