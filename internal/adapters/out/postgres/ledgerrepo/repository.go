package ledgerrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements ports.LedgerRepository using GORM.
type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Credit adds amount to the owner's balance, creating it when absent.
func (r *GormLedgerRepository) Credit(ctx context.Context, owner kernel.UUID, amount kernel.Cents) error {
	if amount < 0 {
		return errs.NewValueIsOutOfRangeError("credit", int64(amount), 0, "unbounded")
	}
	if amount == 0 {
		return nil
	}

	dto := BalanceDTO{Owner: owner.Bytes(), Cents: int64(amount)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner"}},
		DoUpdates: clause.Assignments(map[string]any{
			"cents": gorm.Expr("balances.cents + ?", int64(amount)),
		}),
	}).Create(&dto).Error
}

// DebitIfSufficient subtracts amount in a single conditional statement and
// reports whether the balance covered it.
func (r *GormLedgerRepository) DebitIfSufficient(ctx context.Context, owner kernel.UUID, amount kernel.Cents) (bool, error) {
	if amount < 0 {
		return false, errs.NewValueIsOutOfRangeError("debit", int64(amount), 0, "unbounded")
	}

	res := r.db.WithContext(ctx).
		Model(&BalanceDTO{}).
		Where("owner = ? AND cents >= ?", owner.Bytes(), int64(amount)).
		UpdateColumn("cents", gorm.Expr("cents - ?", int64(amount)))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Balance returns the owner's funds; an unknown owner has none.
func (r *GormLedgerRepository) Balance(ctx context.Context, owner kernel.UUID) (kernel.Cents, error) {
	var dto BalanceDTO
	err := r.db.WithContext(ctx).First(&dto, "owner = ?", owner.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return kernel.Cents(dto.Cents), nil
}

// GormPricingRepository implements ports.PricingRepository using GORM.
type GormPricingRepository struct {
	db *gorm.DB
}

func NewGormPricingRepository(db *gorm.DB) *GormPricingRepository {
	return &GormPricingRepository{db: db}
}

// UnitPrice returns the owner's price for rateVersion, or an ObjectNotFound
// error when the owner has no override.
func (r *GormPricingRepository) UnitPrice(ctx context.Context, owner kernel.UUID, rateVersion string) (kernel.Cents, error) {
	var dto OwnerPriceDTO
	err := r.db.WithContext(ctx).
		First(&dto, "owner = ? AND rate_version = ?", owner.Bytes(), rateVersion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, errs.NewObjectNotFoundError("price", owner.String()+"/"+rateVersion)
	}
	if err != nil {
		return 0, err
	}
	return kernel.Cents(dto.UnitPriceCents), nil
}

// SetUnitPrice stores an owner override.
func (r *GormPricingRepository) SetUnitPrice(ctx context.Context, owner kernel.UUID, rateVersion string, price kernel.Cents) error {
	if _, err := kernel.NewUnitPrice(int64(price)); err != nil {
		return err
	}

	dto := OwnerPriceDTO{Owner: owner.Bytes(), RateVersion: rateVersion, UnitPriceCents: int64(price)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "rate_version"}},
		DoUpdates: clause.AssignmentColumns([]string{"unit_price_cents"}),
	}).Create(&dto).Error
}
