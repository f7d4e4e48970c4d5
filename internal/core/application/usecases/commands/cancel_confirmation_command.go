package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCancelConfirmationCommandIsNotConstructed = errors.New(
		"CancelConfirmationCommand must be created via NewCancelConfirmationCommand constructor",
	)
)

type CancelConfirmationCommand struct {
	batchID kernel.UUID
	owner   kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelConfirmationCommand(batchID, owner kernel.UUID) (CancelConfirmationCommand, error) {
	if err := batchID.Validate(); err != nil {
		return CancelConfirmationCommand{}, errs.NewValueIsRequiredErrorWithCause("batchID", err)
	}
	if err := owner.Validate(); err != nil {
		return CancelConfirmationCommand{}, errs.NewValueIsRequiredErrorWithCause("owner", err)
	}
	return CancelConfirmationCommand{batchID: batchID, owner: owner, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelConfirmationCommand) Validate() error {
	return c.guard.Validate(ErrCancelConfirmationCommandIsNotConstructed)
}

func (c CancelConfirmationCommand) BatchID() kernel.UUID { return c.batchID }
func (c CancelConfirmationCommand) Owner() kernel.UUID   { return c.owner }
