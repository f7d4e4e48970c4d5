package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/retry"
)

var (
	// ErrConfirmationRunning is returned when a run for the batch is already
	// active in this process.
	ErrConfirmationRunning = errors.New("confirmation already running")
	// ErrBatchNotConfirmable is returned when the batch status does not allow
	// a confirmation run, or changed while the run was being started.
	ErrBatchNotConfirmable = errors.New("batch cannot be confirmed")
)

type ConfirmationEngine interface {
	Handle(ctx context.Context, cmd ConfirmShipmentsCommand) (ConfirmationReport, error)
}

// TriggerConfirmationCommandHandler moves a batch to CONFIRMING and runs the
// confirmation engine in the background.
//
// Active runs are tracked in a process-local registry keyed by batch id. The
// registry is not persisted; RecoverInterruptedBatches resolves CONFIRMING
// batches left behind by a restart.
type TriggerConfirmationCommandHandler struct {
	uowFactory UoWFactory
	engine     ConfirmationEngine
	incidents  IncidentRecorder
	logger     *slog.Logger

	running sync.Map
	wg      sync.WaitGroup
}

func NewTriggerConfirmationCommandHandler(
	uowFactory UoWFactory,
	engine ConfirmationEngine,
	incidents IncidentRecorder,
	logger *slog.Logger,
) *TriggerConfirmationCommandHandler {
	return &TriggerConfirmationCommandHandler{
		uowFactory: uowFactory,
		engine:     engine,
		incidents:  incidents,
		logger:     logger.With("component", "confirmation_trigger"),
	}
}

// Handle returns once the batch is CONFIRMING and the run has started.
func (h *TriggerConfirmationCommandHandler) Handle(ctx context.Context, cmd TriggerConfirmationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	id := cmd.BatchID()

	if _, loaded := h.running.LoadOrStore(id, struct{}{}); loaded {
		return ErrConfirmationRunning
	}

	confirmCmd, err := NewConfirmShipmentsCommand(id, cmd.Credentials())
	if err != nil {
		h.running.Delete(id)
		return err
	}

	if err = retry.Write(ctx, func() error { return h.begin(ctx, cmd) }); err != nil {
		h.running.Delete(id)
		return err
	}

	h.wg.Add(1)
	go h.run(context.WithoutCancel(ctx), confirmCmd)

	h.logger.InfoContext(ctx, "Confirmation started", "batch_id", id.String())
	return nil
}

func (h *TriggerConfirmationCommandHandler) begin(ctx context.Context, cmd TriggerConfirmationCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()
	b, err := batchRepo.Get(ctx, cmd.BatchID())
	if err != nil {
		return err
	}
	if !b.Owner().IsEqual(cmd.Owner()) {
		return errs.NewObjectNotFoundError("batch", cmd.BatchID())
	}

	previous := b.Status()
	if err = b.BeginConfirmation(); err != nil {
		return fmt.Errorf("%w: %s", ErrBatchNotConfirmable, previous)
	}

	ok, err := batchRepo.Update(ctx, b, previous)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBatchNotConfirmable
	}

	return uow.Commit(ctx)
}

func (h *TriggerConfirmationCommandHandler) run(ctx context.Context, cmd ConfirmShipmentsCommand) {
	id := cmd.BatchID()
	defer h.wg.Done()
	defer h.running.Delete(id)
	defer func() {
		if r := recover(); r != nil {
			h.incidents.Record(ctx, incident.SourceConfirmation, &id, fmt.Errorf("confirmation panicked: %v", r))
			h.abandon(ctx, id)
		}
	}()

	if _, err := h.engine.Handle(ctx, cmd); err != nil && !errors.Is(err, ErrBatchNotConfirming) {
		h.logger.ErrorContext(ctx, "Confirmation failed", "batch_id", id.String(), "error", err)
	}
}

// abandon leaves a batch that is still CONFIRMING in CONFIRM_FAILED.
func (h *TriggerConfirmationCommandHandler) abandon(ctx context.Context, id kernel.UUID) {
	err := retry.Write(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		b, err := uow.BatchRepository().Get(ctx, id)
		if err != nil {
			return err
		}
		if b.Status() != batch.Confirming {
			return nil
		}
		if err = b.FailConfirmation(); err != nil {
			return err
		}
		if _, err = uow.BatchRepository().Update(ctx, b, batch.Confirming); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to abandon confirmation", "batch_id", id.String(), "error", err)
	}
}

// ActiveConfirmations returns the ids of runs in progress.
func (h *TriggerConfirmationCommandHandler) ActiveConfirmations() []kernel.UUID {
	var ids []kernel.UUID
	h.running.Range(func(key, _ any) bool {
		ids = append(ids, key.(kernel.UUID))
		return true
	})
	return ids
}

// Wait blocks until every started run has returned.
func (h *TriggerConfirmationCommandHandler) Wait() {
	h.wg.Wait()
}
