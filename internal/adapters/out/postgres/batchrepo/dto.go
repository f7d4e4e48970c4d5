// Package batchrepo persists Batch aggregates. Status changes are written with
// a compare-and-set on the stored status so that concurrent workers, the
// confirmation engine and operator actions never overwrite each other.
package batchrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BatchDTO is the batches table row.
type BatchDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Owner          uuid.UUID `gorm:"type:uuid;index"`
	RequestedCount int       `gorm:"not null"`
	SuccessCount   int       `gorm:"not null;default:0"`
	Status         string    `gorm:"size:32;not null;index:idx_batches_status_submitted,priority:1"`
	Template       string    `gorm:"size:64;not null"`
	RateVersion    string    `gorm:"size:64;not null"`
	UnitPriceCents int64     `gorm:"not null"`
	SubmittedAt    time.Time `gorm:"not null;index:idx_batches_status_submitted,priority:2"`
}

func (BatchDTO) TableName() string {
	return "batches"
}

func fromDomain(b *batch.Batch) BatchDTO {
	return BatchDTO{
		ID:             b.ID().Bytes(),
		Owner:          b.Owner().Bytes(),
		RequestedCount: b.RequestedCount(),
		SuccessCount:   b.SuccessCount(),
		Status:         b.Status().String(),
		Template:       b.Template(),
		RateVersion:    b.RateVersion(),
		UnitPriceCents: int64(b.UnitPrice()),
		SubmittedAt:    b.SubmittedAt().UTC(),
	}
}

func toDomain(dto BatchDTO) (*batch.Batch, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	owner, err := kernel.UUIDFromBytes(dto.Owner[:])
	if err != nil {
		return nil, err
	}
	status, err := batch.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return batch.RestoreBatch(id, owner, dto.RequestedCount, dto.SuccessCount, status,
		dto.Template, dto.RateVersion, kernel.Cents(dto.UnitPriceCents), dto.SubmittedAt)
}

func toDomainAll(dtos []BatchDTO) ([]*batch.Batch, error) {
	out := make([]*batch.Batch, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
