package commands

import (
	"errors"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrProcessBatchCommandIsNotConstructed = errors.New(
		"ProcessBatchCommand must be created via NewProcessBatchCommand constructor",
	)
)

// ProcessBatchCommand is one worker tick: claim, synthesize, finalize.
type ProcessBatchCommand struct {
	lane services.Lane

	guard guard.ConstructorGuard
}

func NewProcessBatchCommand(lane services.Lane) (ProcessBatchCommand, error) {
	if err := lane.Validate(); err != nil {
		return ProcessBatchCommand{}, err
	}
	return ProcessBatchCommand{lane: lane, guard: guard.NewConstructorGuard()}, nil
}

func (c ProcessBatchCommand) Validate() error {
	return c.guard.Validate(ErrProcessBatchCommandIsNotConstructed)
}

func (c ProcessBatchCommand) Lane() services.Lane { return c.lane }
