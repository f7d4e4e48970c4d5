package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrPurgeExpiredBatchesCommandIsNotConstructed = errors.New(
		"PurgeExpiredBatchesCommand must be created via NewPurgeExpiredBatchesCommand constructor",
	)
)

// PurgeExpiredBatchesCommand removes terminal batches submitted before cutoff.
type PurgeExpiredBatchesCommand struct {
	cutoff time.Time

	guard guard.ConstructorGuard
}

func NewPurgeExpiredBatchesCommand(cutoff time.Time) (PurgeExpiredBatchesCommand, error) {
	if cutoff.IsZero() {
		return PurgeExpiredBatchesCommand{}, errs.NewValueIsRequiredError("cutoff")
	}
	return PurgeExpiredBatchesCommand{cutoff: cutoff.UTC(), guard: guard.NewConstructorGuard()}, nil
}

func (c PurgeExpiredBatchesCommand) Validate() error {
	return c.guard.Validate(ErrPurgeExpiredBatchesCommandIsNotConstructed)
}

func (c PurgeExpiredBatchesCommand) Cutoff() time.Time { return c.cutoff }
