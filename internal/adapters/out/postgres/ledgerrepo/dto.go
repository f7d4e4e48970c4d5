// Package ledgerrepo persists owner balances and per-owner unit prices.
package ledgerrepo

import "github.com/google/uuid"

// BalanceDTO is an owner's available funds in cents.
type BalanceDTO struct {
	Owner uuid.UUID `gorm:"type:uuid;primaryKey"`
	Cents int64     `gorm:"not null;default:0"`
}

func (BalanceDTO) TableName() string {
	return "balances"
}

// OwnerPriceDTO overrides the default unit price for one rate version.
type OwnerPriceDTO struct {
	Owner          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RateVersion    string    `gorm:"size:64;primaryKey"`
	UnitPriceCents int64     `gorm:"not null"`
}

func (OwnerPriceDTO) TableName() string {
	return "owner_prices"
}
