// Package shipmentrepo persists the validated input rows of a batch.
package shipmentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/shipment"

	"github.com/google/uuid"
)

// ShipmentRowDTO is one parcel of a batch.
type ShipmentRowDTO struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	BatchID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_shipment_rows_batch_seq,priority:1"`
	Seq            int        `gorm:"not null;index:idx_shipment_rows_batch_seq,priority:2"`
	From           AddressDTO `gorm:"embedded;embeddedPrefix:from_"`
	To             AddressDTO `gorm:"embedded;embeddedPrefix:to_"`
	WeightLbs      float64    `gorm:"not null"`
	ItemReference  string
	OrderReference string
	Description    string
	Hazard         bool
	ShipDate       *time.Time
}

func (ShipmentRowDTO) TableName() string {
	return "shipment_rows"
}

// AddressDTO is an embedded postal address.
type AddressDTO struct {
	Name    string
	Company string
	Street  string
	City    string
	State   string `gorm:"size:8"`
	Zip     string `gorm:"size:16"`
}

func fromDomain(batchID uuid.UUID, row shipment.Row) ShipmentRowDTO {
	d := row.Details()

	var shipDate *time.Time
	if !d.ShipDate.IsZero() {
		v := d.ShipDate.UTC()
		shipDate = &v
	}

	return ShipmentRowDTO{
		BatchID:        batchID,
		Seq:            row.Seq(),
		From:           AddressDTO(row.From()),
		To:             AddressDTO(row.To()),
		WeightLbs:      row.WeightLbs(),
		ItemReference:  d.ItemReference,
		OrderReference: d.OrderReference,
		Description:    d.Description,
		Hazard:         d.Hazard,
		ShipDate:       shipDate,
	}
}

func toDomain(dto ShipmentRowDTO) (shipment.Row, error) {
	details := shipment.Details{
		ItemReference:  dto.ItemReference,
		OrderReference: dto.OrderReference,
		Description:    dto.Description,
		Hazard:         dto.Hazard,
	}
	if dto.ShipDate != nil {
		details.ShipDate = dto.ShipDate.UTC()
	}

	return shipment.NewRow(dto.Seq, shipment.Address(dto.From), shipment.Address(dto.To), dto.WeightLbs, details)
}
