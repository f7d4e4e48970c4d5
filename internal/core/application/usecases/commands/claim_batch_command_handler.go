package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/retry"
)

var (
	ErrWorkerPaused  = errors.New("workers are paused")
	ErrNoBatchQueued = errors.New("no batch queued")
	ErrClaimConflict = errors.New("batch was claimed by another worker")
)

// ClaimBatchCommandHandler atomically moves one queued batch to PROCESSING.
//
// Selection and the status flip run in one transaction and the flip is a
// conditional update on the QUEUED status, so of any number of concurrent
// workers exactly one succeeds for a given batch; the others get
// ErrClaimConflict and try again on their next tick.
//
// Example:
//
//	cmd, _ := NewClaimBatchCommand(services.GeneralLane)
//	b, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoBatchQueued), errors.Is(err, ErrWorkerPaused):
//	    // idle tick
//	case err != nil:
//	    log.Printf("claim failed: %v", err)
//	default:
//	    // process b
//	}
type ClaimBatchCommandHandler struct {
	uowFactory UoWFactory
	selector   services.BatchSelector
}

func NewClaimBatchCommandHandler(uowFactory UoWFactory, rnd kernel.Rand) ClaimBatchCommandHandler {
	return ClaimBatchCommandHandler{
		uowFactory: uowFactory,
		selector:   services.NewBatchSelector(rnd),
	}
}

func (h ClaimBatchCommandHandler) Handle(ctx context.Context, cmd ClaimBatchCommand) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var claimed *batch.Batch
	err := retry.Write(ctx, func() error {
		var err error
		claimed, err = h.claim(ctx, cmd.Lane())
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (h ClaimBatchCommandHandler) claim(ctx context.Context, lane services.Lane) (*batch.Batch, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	paused, err := uow.SettingsRepository().IsPaused(ctx)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, ErrWorkerPaused
	}

	batchRepo := uow.BatchRepository()
	queued, err := batchRepo.ListByStatus(ctx, batch.Queued)
	if err != nil {
		return nil, err
	}

	candidate, err := h.selector.Select(queued, lane)
	if errors.Is(err, services.ErrNoCandidate) {
		return nil, ErrNoBatchQueued
	}
	if err != nil {
		return nil, err
	}

	if err = candidate.Claim(); err != nil {
		return nil, err
	}

	ok, err := batchRepo.Update(ctx, candidate, batch.Queued)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrClaimConflict
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return candidate, nil
}
