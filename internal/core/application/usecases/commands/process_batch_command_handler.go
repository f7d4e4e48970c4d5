package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
)

type (
	BatchClaimer interface {
		Handle(ctx context.Context, cmd ClaimBatchCommand) (*batch.Batch, error)
	}

	LabelGenerator interface {
		Handle(ctx context.Context, cmd GenerateLabelsCommand) (int, error)
	}

	BatchFinalizer interface {
		Handle(ctx context.Context, cmd FinalizeBatchCommand) (*batch.Batch, kernel.Cents, error)
	}
)

// ProcessBatchCommandHandler drives one claimed batch to a terminal status.
//
// Any error or panic escaping label synthesis is a batch crash: it is recorded
// as an incident and the batch is finalized with zero successes, which refunds
// the full charge. Finalization is not cancelled with ctx.
//
// Claim errors (ErrNoBatchQueued, ErrWorkerPaused, ErrClaimConflict) are
// returned unchanged so the caller can treat them as an idle tick.
type ProcessBatchCommandHandler struct {
	claimer   BatchClaimer
	generator LabelGenerator
	finalizer BatchFinalizer
	incidents IncidentRecorder
}

func NewProcessBatchCommandHandler(
	claimer BatchClaimer,
	generator LabelGenerator,
	finalizer BatchFinalizer,
	incidents IncidentRecorder,
) ProcessBatchCommandHandler {
	return ProcessBatchCommandHandler{
		claimer:   claimer,
		generator: generator,
		finalizer: finalizer,
		incidents: incidents,
	}
}

// Handle returns the batch as finalized.
func (h ProcessBatchCommandHandler) Handle(ctx context.Context, cmd ProcessBatchCommand) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	claimCmd, err := NewClaimBatchCommand(cmd.Lane())
	if err != nil {
		return nil, err
	}
	b, err := h.claimer.Handle(ctx, claimCmd)
	if err != nil {
		return nil, err
	}
	id := b.ID()

	success, err := h.generate(ctx, b)
	if err != nil {
		h.incidents.Record(ctx, incident.SourceSynthesis, &id, fmt.Errorf("batch crashed: %w", err))
		success = 0
	}

	finalizeCmd, err := NewFinalizeBatchCommand(id, success)
	if err != nil {
		return nil, err
	}
	finalized, _, err := h.finalizer.Handle(context.WithoutCancel(ctx), finalizeCmd)
	if err != nil {
		h.incidents.Record(ctx, incident.SourceWorker, &id, fmt.Errorf("finalize: %w", err))
		return nil, err
	}

	return finalized, nil
}

func (h ProcessBatchCommandHandler) generate(ctx context.Context, b *batch.Batch) (success int, err error) {
	defer func() {
		if r := recover(); r != nil {
			success, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()

	cmd, err := NewGenerateLabelsCommand(b)
	if err != nil {
		return 0, err
	}
	return h.generator.Handle(ctx, cmd)
}
