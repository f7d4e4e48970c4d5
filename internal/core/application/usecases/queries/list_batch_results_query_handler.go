package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/result"

	"gorm.io/gorm"
)

type ListBatchResultsQueryHandler struct {
	db *gorm.DB
}

func NewListBatchResultsQueryHandler(db *gorm.DB) ListBatchResultsQueryHandler {
	return ListBatchResultsQueryHandler{db: db}
}

func (h ListBatchResultsQueryHandler) Handle(
	ctx context.Context,
	query ListBatchResultsQuery,
) ([]ListBatchResultsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := requireOwnedBatch(ctx, h.db, query.BatchID(), query.Owner()); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			seq,
			item_reference,
			order_reference,
			tracking_number,
			status,
			sender_name,
			recipient_name,
			recipient_address,
			rate_version,
			created_at
		FROM result_records
		WHERE batch_id = ?
		ORDER BY seq, id
	`, query.BatchID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]ListBatchResultsQueryResponse, 0)
	for rows.Next() {
		var (
			r      ListBatchResultsQueryResponse
			status string
		)
		err = rows.Scan(
			&r.ID,
			&r.Seq,
			&r.ItemReference,
			&r.OrderReference,
			&r.TrackingNumber,
			&status,
			&r.SenderName,
			&r.RecipientName,
			&r.RecipientAddress,
			&r.RateVersion,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		r.Status = result.Status(status)
		if err = r.Status.Validate(); err != nil {
			return nil, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		results = append(results, r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
