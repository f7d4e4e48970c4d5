package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// LedgerRepository is the owner balance. Both writes are single conditional
// statements, never read-modify-write.
type LedgerRepository interface {
	Credit(ctx context.Context, owner kernel.UUID, amount kernel.Cents) error

	// DebitIfSufficient reports false, without writing, when the balance is
	// lower than amount.
	DebitIfSufficient(ctx context.Context, owner kernel.UUID, amount kernel.Cents) (bool, error)

	Balance(ctx context.Context, owner kernel.UUID) (kernel.Cents, error)
}

// PricingRepository holds per-owner prices.
type PricingRepository interface {
	// UnitPrice returns errs.ObjectNotFoundError when the owner has no price
	// for rateVersion.
	UnitPrice(ctx context.Context, owner kernel.UUID, rateVersion string) (kernel.Cents, error)
}
