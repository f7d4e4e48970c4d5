package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrFinalizeBatchCommandIsNotConstructed = errors.New(
		"FinalizeBatchCommand must be created via NewFinalizeBatchCommand constructor",
	)
)

// FinalizeBatchCommand records the synthesis outcome of a processing batch.
type FinalizeBatchCommand struct {
	batchID      kernel.UUID
	successCount int

	guard guard.ConstructorGuard
}

func NewFinalizeBatchCommand(batchID kernel.UUID, successCount int) (FinalizeBatchCommand, error) {
	if err := batchID.Validate(); err != nil {
		return FinalizeBatchCommand{}, err
	}
	if successCount < 0 {
		return FinalizeBatchCommand{}, errs.NewValueIsOutOfRangeError("success count", successCount, 0, "requested count")
	}
	return FinalizeBatchCommand{
		batchID:      batchID,
		successCount: successCount,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c FinalizeBatchCommand) Validate() error {
	return c.guard.Validate(ErrFinalizeBatchCommandIsNotConstructed)
}

func (c FinalizeBatchCommand) BatchID() kernel.UUID { return c.batchID }
func (c FinalizeBatchCommand) SuccessCount() int    { return c.successCount }
