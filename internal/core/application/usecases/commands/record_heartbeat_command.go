package commands

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRecordHeartbeatCommandIsNotConstructed = errors.New(
		"RecordHeartbeatCommand must be created via NewRecordHeartbeatCommand constructor",
	)
)

type RecordHeartbeatCommand struct {
	workerID string
	lane     services.Lane
	at       time.Time

	guard guard.ConstructorGuard
}

func NewRecordHeartbeatCommand(workerID string, lane services.Lane, at time.Time) (RecordHeartbeatCommand, error) {
	if strings.TrimSpace(workerID) == "" {
		return RecordHeartbeatCommand{}, errs.NewValueIsRequiredError("workerID")
	}
	if err := lane.Validate(); err != nil {
		return RecordHeartbeatCommand{}, err
	}
	if at.IsZero() {
		return RecordHeartbeatCommand{}, errs.NewValueIsRequiredError("at")
	}

	return RecordHeartbeatCommand{
		workerID: workerID,
		lane:     lane,
		at:       at.UTC(),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RecordHeartbeatCommand) Validate() error {
	return c.guard.Validate(ErrRecordHeartbeatCommandIsNotConstructed)
}

func (c RecordHeartbeatCommand) WorkerID() string    { return c.workerID }
func (c RecordHeartbeatCommand) Lane() services.Lane { return c.lane }
func (c RecordHeartbeatCommand) At() time.Time       { return c.at }
