package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/retry"
)

// CancelConfirmationCommandHandler flips a CONFIRMING batch to CONFIRM_FAILED.
// A run in progress is not interrupted; its final status write fails instead.
type CancelConfirmationCommandHandler struct {
	uowFactory UoWFactory
}

func NewCancelConfirmationCommandHandler(uowFactory UoWFactory) CancelConfirmationCommandHandler {
	return CancelConfirmationCommandHandler{uowFactory: uowFactory}
}

func (h CancelConfirmationCommandHandler) Handle(ctx context.Context, cmd CancelConfirmationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return retry.Write(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		batchRepo := uow.BatchRepository()
		b, err := batchRepo.Get(ctx, cmd.BatchID())
		if err != nil {
			return err
		}
		if !b.Owner().IsEqual(cmd.Owner()) {
			return errs.NewObjectNotFoundError("batch", cmd.BatchID())
		}
		if b.Status() != batch.Confirming {
			return ErrBatchNotConfirming
		}
		if err = b.FailConfirmation(); err != nil {
			return err
		}

		ok, err := batchRepo.Update(ctx, b, batch.Confirming)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBatchNotConfirming
		}

		return uow.Commit(ctx)
	})
}
