package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrRecoverInterruptedBatchesCommandIsNotConstructed = errors.New(
		"RecoverInterruptedBatchesCommand must be created via NewRecoverInterruptedBatchesCommand constructor",
	)
)

// RecoverInterruptedBatchesCommand runs once at startup, before any worker.
type RecoverInterruptedBatchesCommand struct {
	guard guard.ConstructorGuard
}

func NewRecoverInterruptedBatchesCommand() RecoverInterruptedBatchesCommand {
	return RecoverInterruptedBatchesCommand{guard: guard.NewConstructorGuard()}
}

func (c RecoverInterruptedBatchesCommand) Validate() error {
	return c.guard.Validate(ErrRecoverInterruptedBatchesCommandIsNotConstructed)
}
