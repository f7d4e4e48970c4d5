package incidentrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/incident"

	"gorm.io/gorm"
)

// GormIncidentRepository implements ports.IncidentRepository using GORM.
type GormIncidentRepository struct {
	db *gorm.DB
}

func NewGormIncidentRepository(db *gorm.DB) *GormIncidentRepository {
	return &GormIncidentRepository{db: db}
}

func (r *GormIncidentRepository) Add(ctx context.Context, i *incident.Incident) error {
	if err := i.Validate(); err != nil {
		return err
	}

	dto := fromDomain(i)
	return r.db.WithContext(ctx).Create(&dto).Error
}
