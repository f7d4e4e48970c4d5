package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/label"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/retry"
)

// DefaultRenderPolicy allows 3 attempts per row.
var DefaultRenderPolicy = retry.Policy{
	MaxAttempts:    3,
	Delay:          500 * time.Millisecond,
	RateLimitDelay: 3 * time.Second,
}

// GenerateLabelsCommandHandler is the label synthesis engine. It renders one
// label per stored row, appends one result record per row and merges the
// rendered pages into the batch document.
//
// A row whose attempts are exhausted is stored as FAILED and the batch goes on.
// Any other error is returned and means the whole batch crashed.
type GenerateLabelsCommandHandler struct {
	uowFactory UoWFactory
	renderer   ports.LabelRenderer
	templates  ports.TemplateCatalog
	rates      ports.RateBook
	documents  ports.DocumentStore
	rnd        kernel.Rand
	policy     retry.Policy
	logger     *slog.Logger
	now        func() time.Time
}

func NewGenerateLabelsCommandHandler(
	uowFactory UoWFactory,
	renderer ports.LabelRenderer,
	templates ports.TemplateCatalog,
	rates ports.RateBook,
	documents ports.DocumentStore,
	rnd kernel.Rand,
	policy retry.Policy,
	logger *slog.Logger,
) GenerateLabelsCommandHandler {
	return GenerateLabelsCommandHandler{
		uowFactory: uowFactory,
		renderer:   renderer,
		templates:  templates,
		rates:      rates,
		documents:  documents,
		rnd:        rnd,
		policy:     policy,
		logger:     logger.With("component", "label_synthesis"),
		now:        time.Now,
	}
}

type renderedLabel struct {
	number tracking.Number
	page   []byte
}

// Handle returns the number of rows that produced a label.
func (h GenerateLabelsCommandHandler) Handle(ctx context.Context, cmd GenerateLabelsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	b := cmd.Batch()

	family, err := h.rates.Family(b.RateVersion())
	if err != nil {
		return 0, err
	}
	labelFamily, ok := h.templates.Family(b.Template())
	if !ok || !h.templates.HasFamily(b.Template()) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTemplate, b.Template())
	}

	rows, err := h.loadRows(ctx, b.ID())
	if err != nil {
		return 0, err
	}

	now := h.now()
	synth := services.NewTrackingSynthesizer(family, now, h.rnd)
	composer := services.NewLabelComposer(h.rnd)

	pages := make([][]byte, 0, len(rows))
	success := 0
	for _, row := range rows {
		rendered, attempts, renderErr := h.renderRow(ctx, b, row, synth, composer, labelFamily, now)
		if renderErr != nil && !retry.IsRetryable(renderErr) {
			return success, renderErr
		}

		var record *result.Record
		if renderErr == nil {
			record, err = result.NewCompleted(b.ID(), b.Owner(), row.Seq(),
				row.Details().ItemReference, row.Details().OrderReference,
				rendered.number, parties(row), b.RateVersion(), h.now())
		} else {
			h.logger.WarnContext(ctx, "Row failed",
				"batch_id", b.ID().String(), "row", row.Seq(), "attempts", attempts, "error", renderErr)
			record, err = result.NewFailed(b.ID(), b.Owner(), row.Seq(),
				row.Details().ItemReference, row.Details().OrderReference,
				parties(row), b.RateVersion(), h.now())
		}
		if err != nil {
			return success, err
		}

		if err = h.storeRecord(ctx, record); err != nil {
			return success, err
		}

		if record.HasLabel() {
			pages = append(pages, rendered.page)
			success++
		}
	}

	if len(pages) > 0 {
		if err = h.documents.Save(ctx, b.ID(), pages); err != nil {
			return success, fmt.Errorf("save document: %w", err)
		}
	}

	h.logger.InfoContext(ctx, "Labels generated",
		"batch_id", b.ID().String(), "requested", b.RequestedCount(), "success", success)
	return success, nil
}

// renderRow returns a retryable error when every attempt failed.
func (h GenerateLabelsCommandHandler) renderRow(
	ctx context.Context,
	b *batch.Batch,
	row shipment.Row,
	synth services.TrackingSynthesizer,
	composer services.LabelComposer,
	labelFamily label.Family,
	now time.Time,
) (renderedLabel, int, error) {
	tpl, err := h.templates.Lookup(b.Template(), label.BracketFor(row.WeightLbs()))
	if err != nil {
		return renderedLabel{}, 0, retry.Retryable(err)
	}

	res, err := retry.Do(ctx, h.policy, func(ctx context.Context, _ int) (renderedLabel, error) {
		number, err := synth.Next()
		if err != nil {
			return renderedLabel{}, err
		}

		content := composer.Compose(row, number, synth.DayCode(), labelFamily, now)
		page, err := h.renderer.Render(ctx, tpl.Render(content.Fields()))
		if err != nil {
			if ctx.Err() != nil {
				return renderedLabel{}, err
			}
			return renderedLabel{}, retry.Retryable(err)
		}
		return renderedLabel{number: number, page: page}, nil
	})
	if err != nil {
		return renderedLabel{}, res.Attempts, err
	}
	if res.Exhausted() {
		return renderedLabel{}, res.Attempts, res.LastErr
	}
	return res.Value, res.Attempts, nil
}

func (h GenerateLabelsCommandHandler) loadRows(ctx context.Context, batchID kernel.UUID) ([]shipment.Row, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	rows, err := uow.ShipmentRepository().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// storeRecord appends the record and, for a labelled row, moves the live
// success counter in the same transaction.
func (h GenerateLabelsCommandHandler) storeRecord(ctx context.Context, record *result.Record) error {
	return retry.Write(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		if err := uow.ResultRepository().Add(ctx, record); err != nil {
			return err
		}
		if record.HasLabel() {
			if _, err := uow.BatchRepository().IncrementSuccess(ctx, record.BatchID()); err != nil {
				return err
			}
		}
		return uow.Commit(ctx)
	})
}

func parties(row shipment.Row) result.Parties {
	return result.Parties{
		SenderName:       row.From().Name,
		RecipientName:    row.To().Name,
		RecipientAddress: row.To().Line(),
	}
}
