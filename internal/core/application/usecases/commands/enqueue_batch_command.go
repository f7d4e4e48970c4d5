package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrEnqueueBatchCommandIsNotConstructed = errors.New(
		"EnqueueBatchCommand must be created via NewEnqueueBatchCommand constructor",
	)
)

// EnqueueBatchCommand submits validated shipment rows as a new queued batch.
//
// Example:
//
//	cmd, err := NewEnqueueBatchCommand(owner, rows, "pitney_v2", "95055")
//	if err != nil {
//	    return fmt.Errorf("invalid batch: %w", err)
//	}
//	batchID, err := handler.Handle(ctx, cmd)
type EnqueueBatchCommand struct {
	owner       kernel.UUID
	rows        []shipment.Row
	template    string
	rateVersion string

	guard guard.ConstructorGuard
}

func NewEnqueueBatchCommand(
	owner kernel.UUID,
	rows []shipment.Row,
	template, rateVersion string,
) (EnqueueBatchCommand, error) {
	cmd := EnqueueBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOwner(owner),
		cmd.setRows(rows),
		cmd.setTemplate(template),
		cmd.setRateVersion(rateVersion),
	); err != nil {
		return EnqueueBatchCommand{}, err
	}

	return cmd, nil
}

func (c EnqueueBatchCommand) Validate() error {
	return c.guard.Validate(ErrEnqueueBatchCommandIsNotConstructed)
}

func (c EnqueueBatchCommand) Owner() kernel.UUID   { return c.owner }
func (c EnqueueBatchCommand) Rows() []shipment.Row { return c.rows }
func (c EnqueueBatchCommand) Template() string     { return c.template }
func (c EnqueueBatchCommand) RateVersion() string  { return c.rateVersion }

func (c *EnqueueBatchCommand) setOwner(owner kernel.UUID) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	c.owner = owner
	return nil
}

func (c *EnqueueBatchCommand) setRows(rows []shipment.Row) error {
	if len(rows) == 0 {
		return errs.NewValueIsRequiredError("rows")
	}
	if len(rows) > batch.MaxRows {
		return errs.NewValueIsOutOfRangeError("rows", len(rows), 1, batch.MaxRows)
	}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	c.rows = rows
	return nil
}

func (c *EnqueueBatchCommand) setTemplate(template string) error {
	template = strings.TrimSpace(template)
	if template == "" {
		return errs.NewValueIsRequiredError("template")
	}
	c.template = template
	return nil
}

func (c *EnqueueBatchCommand) setRateVersion(version string) error {
	version = strings.TrimSpace(version)
	if version == "" {
		return errs.NewValueIsRequiredError("rate version")
	}
	c.rateVersion = version
	return nil
}
