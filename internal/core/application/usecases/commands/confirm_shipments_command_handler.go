package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/retry"
)

// ErrBatchNotConfirming is returned when the batch is not, or no longer, in
// CONFIRMING. An operator cancel produces it at the end of a run.
var ErrBatchNotConfirming = errors.New("batch is not confirming")

// Pacing bounds the random pause between two marketplace submissions.
// A zero Max disables pausing.
type Pacing struct {
	Min time.Duration
	Max time.Duration
}

var DefaultPacing = Pacing{Min: 500 * time.Millisecond, Max: time.Second}

// ConfirmationReport summarizes one confirmation run.
type ConfirmationReport struct {
	Status batch.Status
	// Orders is the number of distinct marketplace orders with unconfirmed rows.
	Orders int
	// Unresolved counts labelled rows without a recognizable order id.
	Unresolved int
	// Skipped counts orders whose remote metadata was unusable.
	Skipped int
	// AlreadyPresent counts tracking numbers found remotely or in the dedup cache.
	AlreadyPresent int
	Submitted      int
	Rejected       int
	// Confirmed is the number of result rows moved to CONFIRMED.
	Confirmed int64
}

type orderGroup struct {
	orderID   string
	trackings []string
}

type confirmationRun struct {
	report      ConfirmationReport
	authAborted bool
	storeErr    error
}

// ConfirmShipmentsCommandHandler is the marketplace confirmation engine.
//
// It groups the batch's labelled rows by marketplace order, looks each order
// up and submits only the tracking numbers that are neither attached to the
// remote order nor present in the dedup cache. A dead session, or a run of
// failed lookups before any lookup succeeds, aborts the run as AUTH_ERROR.
// A Job Store or dedup cache failure aborts it as CONFIRM_FAILED. Otherwise
// the batch ends CONFIRMED even if some submissions were rejected.
//
// There is no cooperative cancellation: a cancelled batch is only noticed by
// the final conditional status write.
type ConfirmShipmentsCommandHandler struct {
	uowFactory    UoWFactory
	marketplace   ports.MarketplaceClient
	dedup         ports.DedupCache
	resolver      services.OrderIDResolver
	failFastLimit int
	pacing        Pacing
	rnd           kernel.Rand
	events        ports.EventPublisher
	incidents     IncidentRecorder
	logger        *slog.Logger
	now           func() time.Time
	sleep         func(time.Duration)
}

func NewConfirmShipmentsCommandHandler(
	uowFactory UoWFactory,
	marketplace ports.MarketplaceClient,
	dedup ports.DedupCache,
	resolver services.OrderIDResolver,
	failFastLimit int,
	pacing Pacing,
	rnd kernel.Rand,
	events ports.EventPublisher,
	incidents IncidentRecorder,
	logger *slog.Logger,
) ConfirmShipmentsCommandHandler {
	return ConfirmShipmentsCommandHandler{
		uowFactory:    uowFactory,
		marketplace:   marketplace,
		dedup:         dedup,
		resolver:      resolver,
		failFastLimit: failFastLimit,
		pacing:        pacing,
		rnd:           rnd,
		events:        events,
		incidents:     incidents,
		logger:        logger.With("component", "confirmation"),
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

func (h ConfirmShipmentsCommandHandler) Handle(ctx context.Context, cmd ConfirmShipmentsCommand) (ConfirmationReport, error) {
	if err := cmd.Validate(); err != nil {
		return ConfirmationReport{}, err
	}
	id := cmd.BatchID()
	logger := h.logger.With("batch_id", id.String())

	run := &confirmationRun{}
	records, err := h.loadRecords(ctx, id)
	switch {
	case errors.Is(err, ErrBatchNotConfirming):
		return ConfirmationReport{}, err
	case err != nil:
		run.storeErr = fmt.Errorf("load results: %w", err)
	default:
		groups := h.groupByOrder(records, run)
		h.confirm(ctx, cmd, groups, run, logger)
	}

	b, err := h.finish(ctx, id, run)
	if errors.Is(err, ErrBatchNotConfirming) {
		logger.InfoContext(ctx, "Confirmation was cancelled before it finished")
		return run.report, err
	}
	if err != nil {
		h.incidents.Record(ctx, incident.SourceConfirmation, &id, fmt.Errorf("finish confirmation: %w", err))
		return run.report, err
	}
	run.report.Status = b.Status()

	switch {
	case run.storeErr != nil:
		h.incidents.Record(ctx, incident.SourceConfirmation, &id, run.storeErr)
	case run.authAborted:
		h.incidents.Record(ctx, incident.SourceConfirmation, &id, errors.New("marketplace session rejected; confirmation aborted"))
	}

	logger.InfoContext(ctx, "Confirmation finished",
		"status", b.Status().String(),
		"orders", run.report.Orders,
		"skipped", run.report.Skipped,
		"already_present", run.report.AlreadyPresent,
		"submitted", run.report.Submitted,
		"rejected", run.report.Rejected,
		"confirmed_rows", run.report.Confirmed)

	publish(ctx, h.events, h.logger, ports.BatchEvent{
		Type:           ports.ConfirmationFinished,
		BatchID:        b.ID().String(),
		Owner:          b.Owner().String(),
		Status:         b.Status().String(),
		RequestedCount: b.RequestedCount(),
		SuccessCount:   b.SuccessCount(),
		At:             h.now().UTC(),
	})

	return run.report, nil
}

func (h ConfirmShipmentsCommandHandler) loadRecords(ctx context.Context, id kernel.UUID) ([]*result.Record, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	b, err := uow.BatchRepository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status() != batch.Confirming {
		return nil, ErrBatchNotConfirming
	}

	records, err := uow.ResultRepository().ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

// groupByOrder keeps the unconfirmed labelled rows, grouped by order id in
// first-seen order.
func (h ConfirmShipmentsCommandHandler) groupByOrder(records []*result.Record, run *confirmationRun) []orderGroup {
	var groups []orderGroup
	index := make(map[string]int)
	seen := make(map[string]struct{})

	for _, r := range records {
		if r.Status() != result.Completed {
			continue
		}
		orderID, _, ok := h.resolver.Resolve(r.ItemReference(), r.OrderReference())
		if !ok {
			run.report.Unresolved++
			continue
		}

		trk := r.Tracking().String()
		if _, dup := seen[trk]; dup {
			continue
		}
		seen[trk] = struct{}{}

		i, ok := index[orderID]
		if !ok {
			i = len(groups)
			index[orderID] = i
			groups = append(groups, orderGroup{orderID: orderID})
		}
		groups[i].trackings = append(groups[i].trackings, trk)
	}

	run.report.Orders = len(groups)
	return groups
}

func (h ConfirmShipmentsCommandHandler) confirm(
	ctx context.Context,
	cmd ConfirmShipmentsCommand,
	groups []orderGroup,
	run *confirmationRun,
	logger *slog.Logger,
) {
	if len(groups) == 0 {
		return
	}

	if err := h.marketplace.ValidateSession(ctx, cmd.Credentials()); err != nil {
		if errors.Is(err, ports.ErrSessionExpired) {
			logger.WarnContext(ctx, "Marketplace session expired")
			run.authAborted = true
			return
		}
		logger.WarnContext(ctx, "Session check failed", "error", err)
	}

	breaker := services.NewFailFastBreaker(h.failFastLimit)
	for _, g := range groups {
		order, err := h.marketplace.GetOrder(ctx, cmd.Credentials(), g.orderID)
		if errors.Is(err, ports.ErrSessionExpired) {
			logger.WarnContext(ctx, "Marketplace session expired", "order_id", g.orderID)
			run.authAborted = true
			return
		}
		// An item code proves the session can read orders, even when the
		// order itself cannot be confirmed.
		lookedUp := err == nil && order.ItemCode != ""
		if err == nil && (order.ItemCode == "" || order.ShipFromAddressID == "") {
			err = services.ErrOrderUnresolvable
		}
		if breaker.Record(lookedUp) {
			run.report.Skipped++
			logger.ErrorContext(ctx, "Every initial order lookup failed; aborting",
				"order_id", g.orderID, "attempts", breaker.Attempts(), "failures", breaker.Failures(), "error", err)
			run.authAborted = true
			return
		}
		if err != nil {
			run.report.Skipped++
			logger.WarnContext(ctx, "Order skipped", "order_id", g.orderID, "error", err)
			continue
		}

		confirmed, stop := h.confirmOrder(ctx, cmd, g, order, run, logger)
		if len(confirmed) > 0 {
			n, err := h.markConfirmed(ctx, cmd.BatchID(), confirmed)
			if err != nil {
				run.storeErr = fmt.Errorf("mark confirmed: %w", err)
				return
			}
			run.report.Confirmed += n
		}
		if stop {
			return
		}
	}
}

// confirmOrder returns the tracking numbers of g now known to the marketplace
// and whether the run must stop.
func (h ConfirmShipmentsCommandHandler) confirmOrder(
	ctx context.Context,
	cmd ConfirmShipmentsCommand,
	g orderGroup,
	order ports.MarketplaceOrder,
	run *confirmationRun,
	logger *slog.Logger,
) ([]string, bool) {
	remote := make(map[string]struct{}, len(order.TrackingIDs))
	for _, t := range order.TrackingIDs {
		remote[t] = struct{}{}
	}

	confirmed := make([]string, 0, len(g.trackings))
	for _, trk := range g.trackings {
		if _, ok := remote[trk]; ok {
			run.report.AlreadyPresent++
			confirmed = append(confirmed, trk)
			continue
		}

		submitted, err := h.dedup.Contains(ctx, trk)
		if err != nil {
			run.storeErr = fmt.Errorf("dedup lookup: %w", err)
			return confirmed, true
		}
		if submitted {
			run.report.AlreadyPresent++
			confirmed = append(confirmed, trk)
			continue
		}

		h.pause(run)
		err = h.marketplace.ConfirmShipment(ctx, cmd.Credentials(), ports.ShipmentConfirmation{
			OrderID:           g.orderID,
			ItemCode:          order.ItemCode,
			ShipFromAddressID: order.ShipFromAddressID,
			TrackingID:        trk,
			ShipDate:          h.now(),
		})
		if errors.Is(err, ports.ErrSessionExpired) {
			logger.WarnContext(ctx, "Marketplace session expired", "order_id", g.orderID)
			run.authAborted = true
			return confirmed, true
		}
		if err != nil {
			run.report.Rejected++
			logger.WarnContext(ctx, "Shipment rejected", "order_id", g.orderID, "tracking", trk, "error", err)
			continue
		}

		run.report.Submitted++
		confirmed = append(confirmed, trk)
		if err = h.dedup.Add(ctx, trk); err != nil {
			run.storeErr = fmt.Errorf("dedup add: %w", err)
			return confirmed, true
		}
	}

	return confirmed, false
}

// pause waits between submissions, never before the first one of a run.
func (h ConfirmShipmentsCommandHandler) pause(run *confirmationRun) {
	if h.pacing.Max <= 0 || run.report.Submitted+run.report.Rejected == 0 {
		return
	}
	ms := kernel.RandomBetween(h.rnd, int(h.pacing.Min.Milliseconds()), int(h.pacing.Max.Milliseconds()))
	h.sleep(time.Duration(ms) * time.Millisecond)
}

func (h ConfirmShipmentsCommandHandler) markConfirmed(ctx context.Context, id kernel.UUID, trackings []string) (int64, error) {
	var n int64
	err := retry.Write(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		var err error
		n, err = uow.ResultRepository().MarkConfirmed(ctx, id, trackings)
		if err != nil {
			return err
		}
		return uow.Commit(ctx)
	})
	return n, err
}

// finish writes the outcome of run if the batch is still CONFIRMING.
func (h ConfirmShipmentsCommandHandler) finish(ctx context.Context, id kernel.UUID, run *confirmationRun) (*batch.Batch, error) {
	var finished *batch.Batch
	err := retry.Write(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		batchRepo := uow.BatchRepository()
		b, err := batchRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if b.Status() != batch.Confirming {
			return ErrBatchNotConfirming
		}

		if run.storeErr != nil {
			err = b.FailConfirmation()
		} else {
			err = b.FinishConfirmation(run.authAborted)
		}
		if err != nil {
			return err
		}

		ok, err := batchRepo.Update(ctx, b, batch.Confirming)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBatchNotConfirming
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		finished = b
		return nil
	})
	return finished, err
}
