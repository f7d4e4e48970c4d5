// Package commands contains business operations that modify system state.
// Every command follows the same pattern: constructor validation, a unit of
// work per Job Store transaction, and persistence through ports repositories.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	ResultRepoFactory interface {
		ResultRepository() ports.ResultRepository
	}

	LedgerRepoFactory interface {
		LedgerRepository() ports.LedgerRepository
	}

	PricingRepoFactory interface {
		PricingRepository() ports.PricingRepository
	}

	SettingsRepoFactory interface {
		SettingsRepository() ports.SettingsRepository
	}

	IncidentRepoFactory interface {
		IncidentRepository() ports.IncidentRepository
	}

	// SettingsUoW manages transactions for operator settings only.
	SettingsUoW interface {
		TxManager
		SettingsRepoFactory
	}

	SettingsUoWFactory interface {
		Create() SettingsUoW
	}

	// IncidentUoW manages transactions for the operator error log only.
	IncidentUoW interface {
		TxManager
		IncidentRepoFactory
	}

	IncidentUoWFactory interface {
		Create() IncidentUoW
	}

	// UoW manages transactions across every Job Store table.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   batches := uow.BatchRepository()
	//   ledger := uow.LedgerRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		BatchRepoFactory
		ShipmentRepoFactory
		ResultRepoFactory
		LedgerRepoFactory
		PricingRepoFactory
		SettingsRepoFactory
		IncidentRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
