package commands

import (
	"errors"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrClaimBatchCommandIsNotConstructed = errors.New(
		"ClaimBatchCommand must be created via NewClaimBatchCommand constructor",
	)
)

// ClaimBatchCommand asks for the next queued batch eligible for a worker lane.
type ClaimBatchCommand struct {
	lane services.Lane

	guard guard.ConstructorGuard
}

func NewClaimBatchCommand(lane services.Lane) (ClaimBatchCommand, error) {
	if err := lane.Validate(); err != nil {
		return ClaimBatchCommand{}, err
	}
	return ClaimBatchCommand{lane: lane, guard: guard.NewConstructorGuard()}, nil
}

func (c ClaimBatchCommand) Validate() error {
	return c.guard.Validate(ErrClaimBatchCommandIsNotConstructed)
}

func (c ClaimBatchCommand) Lane() services.Lane { return c.lane }
