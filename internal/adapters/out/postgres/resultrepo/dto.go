// Package resultrepo persists per-row result records.
package resultrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

// ResultRecordDTO is one row outcome. TrackingNumber holds the unspaced number
// or the FAILED sentinel; the embedded parts let the number be rebuilt.
type ResultRecordDTO struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	BatchID          uuid.UUID `gorm:"type:uuid;not null;index:idx_result_records_batch_seq,priority:1"`
	Owner            uuid.UUID `gorm:"type:uuid;not null;index"`
	Seq              int       `gorm:"not null;index:idx_result_records_batch_seq,priority:2"`
	ItemReference    string
	OrderReference   string
	TrackingNumber   string      `gorm:"size:40;not null;index"`
	Tracking         TrackingDTO `gorm:"embedded;embeddedPrefix:tracking_"`
	Status           string      `gorm:"size:16;not null"`
	SenderName       string
	RecipientName    string
	RecipientAddress string
	RateVersion      string `gorm:"size:64"`
	CreatedAt        time.Time
}

func (ResultRecordDTO) TableName() string {
	return "result_records"
}

// TrackingDTO holds the parts of a tracking number; all empty for FAILED rows.
type TrackingDTO struct {
	ServiceTypeCode string `gorm:"size:8"`
	MailerID        string `gorm:"size:16"`
	Serial          string `gorm:"size:24"`
	CheckDigit      int
}

func fromDomain(r *result.Record) ResultRecordDTO {
	n := r.Tracking()
	p := r.Parties()

	return ResultRecordDTO{
		ID:             r.ID(),
		BatchID:        r.BatchID().Bytes(),
		Owner:          r.Owner().Bytes(),
		Seq:            r.Seq(),
		ItemReference:  r.ItemReference(),
		OrderReference: r.OrderReference(),
		TrackingNumber: n.String(),
		Tracking: TrackingDTO{
			ServiceTypeCode: n.ServiceTypeCode(),
			MailerID:        n.MailerID(),
			Serial:          n.Serial(),
			CheckDigit:      n.CheckDigit(),
		},
		Status:           string(r.Status()),
		SenderName:       p.SenderName,
		RecipientName:    p.RecipientName,
		RecipientAddress: p.RecipientAddress,
		RateVersion:      r.RateVersion(),
		CreatedAt:        r.CreatedAt().UTC(),
	}
}

func toDomain(dto ResultRecordDTO) (*result.Record, error) {
	batchID, err := kernel.UUIDFromBytes(dto.BatchID[:])
	if err != nil {
		return nil, err
	}
	owner, err := kernel.UUIDFromBytes(dto.Owner[:])
	if err != nil {
		return nil, err
	}

	var number tracking.Number
	if dto.Tracking.ServiceTypeCode != "" {
		number, err = tracking.RestoreNumber(dto.Tracking.ServiceTypeCode, dto.Tracking.MailerID,
			dto.Tracking.Serial, dto.Tracking.CheckDigit)
		if err != nil {
			return nil, err
		}
	}

	return result.RestoreRecord(dto.ID, batchID, owner, dto.Seq, dto.ItemReference, dto.OrderReference,
		number, result.Status(dto.Status),
		result.Parties{
			SenderName:       dto.SenderName,
			RecipientName:    dto.RecipientName,
			RecipientAddress: dto.RecipientAddress,
		},
		dto.RateVersion, dto.CreatedAt)
}
