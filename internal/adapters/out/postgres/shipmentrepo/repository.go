package shipmentrepo

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/batchrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"gorm.io/gorm"
)

// insertChunk bounds the rows per INSERT statement.
const insertChunk = 500

// GormShipmentRepository implements ports.ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db *gorm.DB
}

func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// AddAll stores rows for batchID.
func (r *GormShipmentRepository) AddAll(ctx context.Context, batchID kernel.UUID, rows []shipment.Row) error {
	if err := batchID.Validate(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	dtos := make([]ShipmentRowDTO, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(batchID.Bytes(), row))
	}

	return r.db.WithContext(ctx).CreateInBatches(&dtos, insertChunk).Error
}

// ListByBatch returns the rows of a batch in row-number order.
func (r *GormShipmentRepository) ListByBatch(ctx context.Context, batchID kernel.UUID) ([]shipment.Row, error) {
	var dtos []ShipmentRowDTO
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID.Bytes()).
		Order("seq, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	rows := make([]shipment.Row, 0, len(dtos))
	for _, dto := range dtos {
		row, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *GormShipmentRepository) DeleteByBatches(ctx context.Context, batchIDs []kernel.UUID) error {
	if len(batchIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("batch_id IN ?", batchrepo.Keys(batchIDs)).Delete(&ShipmentRowDTO{}).Error
}
