package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/retry"
)

// RecoveryReport lists the batches moved by RecoverInterruptedBatches.
type RecoveryReport struct {
	Failed        []kernel.UUID
	ConfirmFailed []kernel.UUID
}

// RecoverInterruptedBatchesCommandHandler resolves batches left owned by a
// process that died.
//
// A PROCESSING batch is never retried: it becomes FAILED with a full refund.
// Rows already stored for it stay as they are. A CONFIRMING batch becomes
// CONFIRM_FAILED because the in-process run registry is empty after a restart;
// the owner may trigger confirmation again.
type RecoverInterruptedBatchesCommandHandler struct {
	uowFactory UoWFactory
	incidents  IncidentRecorder
}

func NewRecoverInterruptedBatchesCommandHandler(uowFactory UoWFactory, incidents IncidentRecorder) RecoverInterruptedBatchesCommandHandler {
	return RecoverInterruptedBatchesCommandHandler{uowFactory: uowFactory, incidents: incidents}
}

func (h RecoverInterruptedBatchesCommandHandler) Handle(
	ctx context.Context,
	cmd RecoverInterruptedBatchesCommand,
) (RecoveryReport, error) {
	if err := cmd.Validate(); err != nil {
		return RecoveryReport{}, err
	}

	var report RecoveryReport
	err := retry.Write(ctx, func() error {
		var err error
		report, err = h.recover(ctx)
		return err
	})
	if err != nil {
		return RecoveryReport{}, err
	}

	for _, id := range report.Failed {
		h.incidents.Record(ctx, incident.SourceWorker, &id,
			errors.New("batch was processing at startup; failed with full refund"))
	}
	for _, id := range report.ConfirmFailed {
		h.incidents.Record(ctx, incident.SourceConfirmation, &id,
			errors.New("confirmation was running at startup; marked CONFIRM_FAILED"))
	}

	return report, nil
}

func (h RecoverInterruptedBatchesCommandHandler) recover(ctx context.Context) (RecoveryReport, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RecoveryReport{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()
	ledger := uow.LedgerRepository()
	var report RecoveryReport

	processing, err := batchRepo.ListByStatus(ctx, batch.Processing)
	if err != nil {
		return RecoveryReport{}, err
	}
	for _, b := range processing {
		refund, err := b.Abandon()
		if err != nil {
			return RecoveryReport{}, err
		}
		ok, err := batchRepo.Update(ctx, b, batch.Processing)
		if err != nil {
			return RecoveryReport{}, err
		}
		if !ok {
			continue
		}
		if err = ledger.Credit(ctx, b.Owner(), refund); err != nil {
			return RecoveryReport{}, err
		}
		report.Failed = append(report.Failed, b.ID())
	}

	confirming, err := batchRepo.ListByStatus(ctx, batch.Confirming)
	if err != nil {
		return RecoveryReport{}, err
	}
	for _, b := range confirming {
		if err = b.FailConfirmation(); err != nil {
			return RecoveryReport{}, err
		}
		ok, err := batchRepo.Update(ctx, b, batch.Confirming)
		if err != nil {
			return RecoveryReport{}, err
		}
		if ok {
			report.ConfirmFailed = append(report.ConfirmFailed, b.ID())
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return RecoveryReport{}, err
	}

	return report, nil
}
