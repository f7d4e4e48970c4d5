package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGenerateLabelsCommandIsNotConstructed = errors.New(
		"GenerateLabelsCommand must be created via NewGenerateLabelsCommand constructor",
	)
)

// GenerateLabelsCommand runs label synthesis for a claimed batch.
type GenerateLabelsCommand struct {
	batch *batch.Batch

	guard guard.ConstructorGuard
}

func NewGenerateLabelsCommand(b *batch.Batch) (GenerateLabelsCommand, error) {
	if err := b.Validate(); err != nil {
		return GenerateLabelsCommand{}, err
	}
	return GenerateLabelsCommand{batch: b, guard: guard.NewConstructorGuard()}, nil
}

func (c GenerateLabelsCommand) Validate() error {
	return c.guard.Validate(ErrGenerateLabelsCommandIsNotConstructed)
}

func (c GenerateLabelsCommand) Batch() *batch.Batch { return c.batch }
