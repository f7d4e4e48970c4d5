package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/retry"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownTemplate   = errors.New("unknown template")
)

// EnqueueBatchCommandHandler charges the owner and stores a queued batch with
// its rows. Debit, id allocation and inserts run under one process-wide lock
// and one transaction, so a batch is never stored without its charge.
type EnqueueBatchCommandHandler struct {
	uowFactory UoWFactory
	rates      ports.RateBook
	templates  ports.TemplateCatalog
	mu         *sync.Mutex
	now        func() time.Time
}

func NewEnqueueBatchCommandHandler(
	uowFactory UoWFactory,
	rates ports.RateBook,
	templates ports.TemplateCatalog,
) EnqueueBatchCommandHandler {
	return EnqueueBatchCommandHandler{
		uowFactory: uowFactory,
		rates:      rates,
		templates:  templates,
		mu:         &sync.Mutex{},
		now:        time.Now,
	}
}

// Handle returns the id of the new batch. It returns ErrInsufficientFunds when
// the owner cannot pay for every row.
func (h EnqueueBatchCommandHandler) Handle(ctx context.Context, cmd EnqueueBatchCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	if _, err := h.rates.Family(cmd.RateVersion()); err != nil {
		return kernel.UUID{}, err
	}
	if !h.templates.HasFamily(cmd.Template()) {
		return kernel.UUID{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, cmd.Template())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var id kernel.UUID
	err := retry.Write(ctx, func() error {
		var err error
		id, err = h.enqueue(ctx, cmd)
		return err
	})
	if err != nil {
		return kernel.UUID{}, err
	}
	return id, nil
}

func (h EnqueueBatchCommandHandler) enqueue(ctx context.Context, cmd EnqueueBatchCommand) (kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	price, err := uow.PricingRepository().UnitPrice(ctx, cmd.Owner(), cmd.RateVersion())
	if errors.Is(err, errs.ErrObjectNotFound) {
		price, err = h.rates.DefaultUnitPrice(), nil
	}
	if err != nil {
		return kernel.UUID{}, err
	}

	b, err := batch.NewBatch(
		kernel.NewUUID(),
		cmd.Owner(),
		len(cmd.Rows()),
		cmd.Template(),
		cmd.RateVersion(),
		price,
		h.now(),
	)
	if err != nil {
		return kernel.UUID{}, err
	}

	paid, err := uow.LedgerRepository().DebitIfSufficient(ctx, b.Owner(), b.Charge())
	if err != nil {
		return kernel.UUID{}, err
	}
	if !paid {
		return kernel.UUID{}, ErrInsufficientFunds
	}

	if err = uow.BatchRepository().Add(ctx, b); err != nil {
		return kernel.UUID{}, err
	}
	if err = uow.ShipmentRepository().AddAll(ctx, b.ID(), cmd.Rows()); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return b.ID(), nil
}
