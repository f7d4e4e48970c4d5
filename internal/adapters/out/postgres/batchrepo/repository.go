package batchrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// nonTerminal are the statuses owned by a worker or a confirmation run.
var nonTerminal = []string{batch.Queued.String(), batch.Processing.String(), batch.Confirming.String()}

// GormBatchRepository implements ports.BatchRepository using GORM.
type GormBatchRepository struct {
	db *gorm.DB
}

func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Add inserts a new batch.
func (r *GormBatchRepository) Add(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a batch by ID.
func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListByStatus returns batches in status, oldest submission first.
func (r *GormBatchRepository) ListByStatus(ctx context.Context, status batch.Status) ([]*batch.Batch, error) {
	var dtos []BatchDTO
	err := r.db.WithContext(ctx).
		Where("status = ?", status.String()).
		Order("submitted_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// Update writes status and success count only when the stored status still
// equals expected. It reports whether the row was written.
func (r *GormBatchRepository) Update(ctx context.Context, aggregate *batch.Batch, expected batch.Status) (bool, error) {
	if err := aggregate.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&BatchDTO{}).
		Where("id = ? AND status = ?", aggregate.ID().Bytes(), expected.String()).
		Updates(map[string]any{
			"status":        aggregate.Status().String(),
			"success_count": aggregate.SuccessCount(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// IncrementSuccess adds one to the success count unless it already equals the
// requested count.
func (r *GormBatchRepository) IncrementSuccess(ctx context.Context, id kernel.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BatchDTO{}).
		Where("id = ? AND success_count < requested_count", id.Bytes()).
		UpdateColumn("success_count", gorm.Expr("success_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ListTerminalBefore returns terminal batches submitted before cutoff.
func (r *GormBatchRepository) ListTerminalBefore(ctx context.Context, cutoff time.Time) ([]*batch.Batch, error) {
	var dtos []BatchDTO
	err := r.db.WithContext(ctx).
		Where("status NOT IN ? AND submitted_at < ?", nonTerminal, cutoff.UTC()).
		Order("submitted_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func (r *GormBatchRepository) Delete(ctx context.Context, ids []kernel.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", Keys(ids)).Delete(&BatchDTO{}).Error
}

// Keys converts domain ids to column values.
func Keys(ids []kernel.UUID) []uuid.UUID {
	keys := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		keys[i] = id.Bytes()
	}
	return keys
}
