package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/pkg/retry"
)

// SetWorkerPausedCommandHandler stops or resumes claiming. In-flight batches
// are not interrupted.
type SetWorkerPausedCommandHandler struct {
	uowFactory SettingsUoWFactory
	logger     *slog.Logger
}

func NewSetWorkerPausedCommandHandler(uowFactory SettingsUoWFactory, logger *slog.Logger) SetWorkerPausedCommandHandler {
	return SetWorkerPausedCommandHandler{uowFactory: uowFactory, logger: logger.With("component", "worker_control")}
}

func (h SetWorkerPausedCommandHandler) Handle(ctx context.Context, cmd SetWorkerPausedCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := retry.Write(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		if err := uow.SettingsRepository().SetPaused(ctx, cmd.Paused()); err != nil {
			return err
		}

		return uow.Commit(ctx)
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Worker pause flag changed", "paused", cmd.Paused())
	return nil
}
