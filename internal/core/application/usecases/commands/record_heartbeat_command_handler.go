package commands

import (
	"context"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/retry"
)

// RecordHeartbeatCommandHandler upserts the liveness row of one worker.
type RecordHeartbeatCommandHandler struct {
	uowFactory SettingsUoWFactory
}

func NewRecordHeartbeatCommandHandler(uowFactory SettingsUoWFactory) RecordHeartbeatCommandHandler {
	return RecordHeartbeatCommandHandler{uowFactory: uowFactory}
}

func (h RecordHeartbeatCommandHandler) Handle(ctx context.Context, cmd RecordHeartbeatCommand) error {
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

		hb := ports.Heartbeat{WorkerID: cmd.WorkerID(), Lane: string(cmd.Lane()), At: cmd.At()}
		if err := uow.SettingsRepository().RecordHeartbeat(ctx, hb); err != nil {
			return err
		}

		return uow.Commit(ctx)
	})
}
