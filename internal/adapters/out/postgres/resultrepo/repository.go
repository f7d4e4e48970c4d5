package resultrepo

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/batchrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"

	"gorm.io/gorm"
)

// GormResultRepository implements ports.ResultRepository using GORM.
type GormResultRepository struct {
	db *gorm.DB
}

func NewGormResultRepository(db *gorm.DB) *GormResultRepository {
	return &GormResultRepository{db: db}
}

// Add inserts a record; the store assigns its id.
func (r *GormResultRepository) Add(ctx context.Context, rec *result.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	dto := fromDomain(rec)
	dto.ID = 0
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListByBatch returns the records of a batch in row-number order.
func (r *GormResultRepository) ListByBatch(ctx context.Context, batchID kernel.UUID) ([]*result.Record, error) {
	var dtos []ResultRecordDTO
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID.Bytes()).
		Order("seq, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]*result.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// MarkConfirmed moves the COMPLETED records of batchID carrying one of
// trackingNumbers to CONFIRMED and returns how many changed.
func (r *GormResultRepository) MarkConfirmed(ctx context.Context, batchID kernel.UUID, trackingNumbers []string) (int64, error) {
	if len(trackingNumbers) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&ResultRecordDTO{}).
		Where("batch_id = ? AND status = ? AND tracking_number IN ?",
			batchID.Bytes(), string(result.Completed), trackingNumbers).
		Update("status", string(result.Confirmed))
	return res.RowsAffected, res.Error
}

func (r *GormResultRepository) DeleteByBatches(ctx context.Context, batchIDs []kernel.UUID) error {
	if len(batchIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("batch_id IN ?", batchrepo.Keys(batchIDs)).Delete(&ResultRecordDTO{}).Error
}
