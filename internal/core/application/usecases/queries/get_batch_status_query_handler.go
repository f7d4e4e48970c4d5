package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetBatchStatusQueryHandler reads a batch row and its queue position.
type GetBatchStatusQueryHandler struct {
	db *gorm.DB
}

func NewGetBatchStatusQueryHandler(db *gorm.DB) GetBatchStatusQueryHandler {
	return GetBatchStatusQueryHandler{db: db}
}

// Handle returns ObjectNotFound when the batch is missing or owned by another user.
func (h GetBatchStatusQueryHandler) Handle(
	ctx context.Context,
	query GetBatchStatusQuery,
) (GetBatchStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetBatchStatusQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.owner,
			b.status,
			b.requested_count,
			b.success_count,
			b.template,
			b.rate_version,
			b.unit_price_cents,
			b.submitted_at,
			CASE WHEN b.status = ? THEN (
				SELECT COUNT(*) FROM batches q
				WHERE q.status = ?
				  AND (q.submitted_at < b.submitted_at
				       OR (q.submitted_at = b.submitted_at AND q.id <= b.id))
			) ELSE 0 END AS queue_position
		FROM batches b
		WHERE b.id = ?
	`, batch.Queued.String(), batch.Queued.String(), query.BatchID().Bytes()).Rows()
	if err != nil {
		return GetBatchStatusQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetBatchStatusQueryResponse{}, err
		}
		return GetBatchStatusQueryResponse{}, errs.NewObjectNotFoundError("batch", query.BatchID().String())
	}

	var (
		resp       GetBatchStatusQueryResponse
		id, owner  uuid.UUID
		status     string
		priceCents int64
		position   int64
	)
	err = rows.Scan(
		&id,
		&owner,
		&status,
		&resp.RequestedCount,
		&resp.SuccessCount,
		&resp.Template,
		&resp.RateVersion,
		&priceCents,
		&resp.SubmittedAt,
		&position,
	)
	if err != nil {
		return GetBatchStatusQueryResponse{}, err
	}

	if owner != query.Owner().Bytes() {
		return GetBatchStatusQueryResponse{}, errs.NewObjectNotFoundError("batch", query.BatchID().String())
	}

	if resp.ID, err = toKernelID(id); err != nil {
		return GetBatchStatusQueryResponse{}, err
	}
	if resp.Status, err = batch.ParseStatus(status); err != nil {
		return GetBatchStatusQueryResponse{}, err
	}
	resp.UnitPrice = kernel.Cents(priceCents)
	resp.SubmittedAt = resp.SubmittedAt.UTC()
	resp.QueuePosition = int(position)

	return resp, rows.Err()
}
