package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrSetWorkerPausedCommandIsNotConstructed = errors.New(
		"SetWorkerPausedCommand must be created via NewSetWorkerPausedCommand constructor",
	)
)

// SetWorkerPausedCommand toggles the global pause flag checked by every
// worker before it claims.
type SetWorkerPausedCommand struct {
	paused bool

	guard guard.ConstructorGuard
}

func NewSetWorkerPausedCommand(paused bool) SetWorkerPausedCommand {
	return SetWorkerPausedCommand{paused: paused, guard: guard.NewConstructorGuard()}
}

func (c SetWorkerPausedCommand) Validate() error {
	return c.guard.Validate(ErrSetWorkerPausedCommandIsNotConstructed)
}

func (c SetWorkerPausedCommand) Paused() bool { return c.paused }
