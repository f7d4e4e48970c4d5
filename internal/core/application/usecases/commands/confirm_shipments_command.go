package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/session"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrConfirmShipmentsCommandIsNotConstructed = errors.New(
		"ConfirmShipmentsCommand must be created via NewConfirmShipmentsCommand constructor",
	)
)

// ConfirmShipmentsCommand runs one confirmation pass over a CONFIRMING batch.
type ConfirmShipmentsCommand struct {
	batchID kernel.UUID
	creds   session.Credentials

	guard guard.ConstructorGuard
}

func NewConfirmShipmentsCommand(batchID kernel.UUID, creds session.Credentials) (ConfirmShipmentsCommand, error) {
	if err := batchID.Validate(); err != nil {
		return ConfirmShipmentsCommand{}, errs.NewValueIsRequiredErrorWithCause("batchID", err)
	}
	if err := creds.Validate(); err != nil {
		return ConfirmShipmentsCommand{}, err
	}

	return ConfirmShipmentsCommand{batchID: batchID, creds: creds, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmShipmentsCommand) Validate() error {
	return c.guard.Validate(ErrConfirmShipmentsCommandIsNotConstructed)
}

func (c ConfirmShipmentsCommand) BatchID() kernel.UUID             { return c.batchID }
func (c ConfirmShipmentsCommand) Credentials() session.Credentials { return c.creds }
