package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/session"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrTriggerConfirmationCommandIsNotConstructed = errors.New(
		"TriggerConfirmationCommand must be created via NewTriggerConfirmationCommand constructor",
	)
)

// TriggerConfirmationCommand starts a background confirmation run for a batch
// owned by owner.
type TriggerConfirmationCommand struct {
	batchID kernel.UUID
	owner   kernel.UUID
	creds   session.Credentials

	guard guard.ConstructorGuard
}

// NewTriggerConfirmationCommand parses sessionBlob; see session.Parse for the
// accepted shapes.
func NewTriggerConfirmationCommand(
	batchID kernel.UUID,
	owner kernel.UUID,
	sessionBlob string,
	csrfToken string,
) (TriggerConfirmationCommand, error) {
	if err := batchID.Validate(); err != nil {
		return TriggerConfirmationCommand{}, errs.NewValueIsRequiredErrorWithCause("batchID", err)
	}
	if err := owner.Validate(); err != nil {
		return TriggerConfirmationCommand{}, errs.NewValueIsRequiredErrorWithCause("owner", err)
	}

	creds, err := session.Parse(sessionBlob, csrfToken)
	if err != nil {
		return TriggerConfirmationCommand{}, err
	}

	return TriggerConfirmationCommand{
		batchID: batchID,
		owner:   owner,
		creds:   creds,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c TriggerConfirmationCommand) Validate() error {
	return c.guard.Validate(ErrTriggerConfirmationCommandIsNotConstructed)
}

func (c TriggerConfirmationCommand) BatchID() kernel.UUID             { return c.batchID }
func (c TriggerConfirmationCommand) Owner() kernel.UUID               { return c.owner }
func (c TriggerConfirmationCommand) Credentials() session.Credentials { return c.creds }
