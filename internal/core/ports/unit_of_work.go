package ports

import (
	"context"
)

// UnitOfWorkFactory hands out one UnitOfWork per command invocation.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one Job Store transaction. Every repository it returns after
// Begin shares that transaction, so a batch status change and the matching
// ledger movement commit or roll back together.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	// Commit fails when no transaction is open.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	BatchRepository() BatchRepository
	ShipmentRepository() ShipmentRepository
	ResultRepository() ResultRepository
	LedgerRepository() LedgerRepository
	PricingRepository() PricingRepository
	SettingsRepository() SettingsRepository
	IncidentRepository() IncidentRepository
}
