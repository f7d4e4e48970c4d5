// Package incidentrepo persists the operator-only error log.
package incidentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/incident"

	"github.com/google/uuid"
)

// IncidentDTO is one incidents table row.
type IncidentDTO struct {
	ID      int64      `gorm:"primaryKey;autoIncrement"`
	Source  string     `gorm:"size:32;not null;index"`
	BatchID *uuid.UUID `gorm:"type:uuid;index"`
	Message string     `gorm:"type:text;not null"`
	At      time.Time  `gorm:"not null;index"`
}

func (IncidentDTO) TableName() string {
	return "incidents"
}

func fromDomain(i *incident.Incident) IncidentDTO {
	var batchID *uuid.UUID
	if id := i.BatchID(); id != nil {
		raw := id.Bytes()
		batchID = &raw
	}

	return IncidentDTO{
		Source:  string(i.Source()),
		BatchID: batchID,
		Message: i.Message(),
		At:      i.At().UTC(),
	}
}
