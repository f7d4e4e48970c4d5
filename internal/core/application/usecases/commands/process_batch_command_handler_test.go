package commands_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/label"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTemplate = "pitney_v2"
	testRate     = "95055"
	testPrice    = kernel.Cents(250)
	testFunds    = kernel.Cents(10_000)
)

func testCatalog(t *testing.T) *label.Catalog {
	t.Helper()
	catalog := label.NewCatalog()
	tpl, err := label.NewTemplate(label.Key{Family: testTemplate, Bracket: label.AnyWeight},
		"^XA^FD{RECEIVER_BLOCK}^FS^FD{REF1}^FS^FD{TRACKING}^FS^XZ")
	require.NoError(t, err)
	catalog.Add(tpl)
	return catalog
}

func testRows(t *testing.T, n int) []shipment.Row {
	t.Helper()
	rows := make([]shipment.Row, 0, n)
	for i := 1; i <= n; i++ {
		row, err := shipment.NewRow(i,
			shipment.Address{Name: "Acme", Street: "1 Main St", City: "Austin", State: "TX", Zip: "73301"},
			shipment.Address{Name: "Jane Roe", Street: "9 Elm St", City: "Salem", State: "OR", Zip: "97301"},
			2,
			shipment.Details{
				ItemReference:  fmt.Sprintf("SKU-%d", i),
				OrderReference: fmt.Sprintf("111-0000000-000000%d", i),
				Description:    "Mug",
			})
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

type pipeline struct {
	store     *memStore
	renderer  *MockLabelRenderer
	documents *MockDocumentStore
	events    *MockEventPublisher
	enqueue   commands.EnqueueBatchCommandHandler
	claimer   commands.ClaimBatchCommandHandler
	finalizer commands.FinalizeBatchCommandHandler
	process   commands.ProcessBatchCommandHandler
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	p := &pipeline{
		store:     newMemStore(),
		renderer:  new(MockLabelRenderer),
		documents: new(MockDocumentStore),
		events:    new(MockEventPublisher),
	}

	uow := memUoWFactory{p.store}
	logger := discardLogger()
	rnd := kernel.NewSeededRand(42)
	catalog := testCatalog(t)
	rates := staticRates{price: testPrice}
	incidents := commands.NewIncidentRecorder(memIncidentUoWFactory{p.store}, logger)

	p.enqueue = commands.NewEnqueueBatchCommandHandler(uow, rates, catalog)
	p.claimer = commands.NewClaimBatchCommandHandler(uow, rnd)
	p.finalizer = commands.NewFinalizeBatchCommandHandler(uow, p.events, logger)
	generator := commands.NewGenerateLabelsCommandHandler(uow, p.renderer, catalog, rates, p.documents, rnd,
		retry.Policy{MaxAttempts: 3}, logger)
	p.process = commands.NewProcessBatchCommandHandler(p.claimer, generator, p.finalizer, incidents)
	return p
}

func (p *pipeline) submit(t *testing.T, owner kernel.UUID, rows int) kernel.UUID {
	t.Helper()
	cmd, err := commands.NewEnqueueBatchCommand(owner, testRows(t, rows), testTemplate, testRate)
	require.NoError(t, err)
	id, err := p.enqueue.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return id
}

func (p *pipeline) run(t *testing.T) (*batch.Batch, error) {
	t.Helper()
	cmd, err := commands.NewProcessBatchCommand(services.GeneralLane)
	require.NoError(t, err)
	return p.process.Handle(t.Context(), cmd)
}

func (p *pipeline) expectFinalized(status batch.Status) {
	p.events.On("Publish", mock.Anything, mock.MatchedBy(func(e ports.BatchEvent) bool {
		return e.Type == ports.BatchFinalized && e.Status == status.String()
	})).Return(nil).Once()
}

func TestProcessBatch_FullSuccess(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 3)
	assert.Equal(t, testFunds-3*testPrice, p.store.balance(owner))

	p.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF-1.7 page"), nil).Times(3)
	p.documents.On("Save", mock.Anything, id, mock.MatchedBy(func(pages [][]byte) bool {
		return len(pages) == 3
	})).Return(nil).Once()
	p.expectFinalized(batch.Completed)

	// When
	processed, err := p.run(t)

	// Then
	require.NoError(t, err)
	assert.True(t, processed.ID().IsEqual(id))
	assert.Equal(t, batch.Completed, processed.Status())
	assert.Equal(t, 3, processed.SuccessCount())

	stored := p.store.batch(id)
	assert.Equal(t, batch.Completed, stored.Status())
	assert.Equal(t, 3, stored.SuccessCount())
	assert.Equal(t, testFunds-3*testPrice, p.store.balance(owner), "no refund")

	records := p.store.records(id)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, result.Completed, r.Status())
		assert.Equal(t, i+1, r.Seq())
		assert.True(t, tracking.IsValid(r.Tracking().String()))
		assert.True(t, strings.HasPrefix(r.Tracking().String(), "9505"))
	}

	p.renderer.AssertExpectations(t)
	p.documents.AssertExpectations(t)
	p.events.AssertExpectations(t)
}

func TestProcessBatch_TotalOutage(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 3)

	p.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, ports.ErrRenderFailed).Times(9)
	p.expectFinalized(batch.Failed)

	// When
	processed, err := p.run(t)

	// Then
	require.NoError(t, err)
	assert.Equal(t, batch.Failed, processed.Status())
	stored := p.store.batch(id)
	assert.Equal(t, batch.Failed, stored.Status())
	assert.Equal(t, 0, stored.SuccessCount())
	assert.Equal(t, testFunds, p.store.balance(owner), "full refund of 3 units")

	records := p.store.records(id)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, result.Failed, r.Status())
		assert.Equal(t, tracking.FailedValue, r.Tracking().String())
	}

	p.renderer.AssertExpectations(t)
	p.documents.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessBatch_PartialFailure(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 3)

	p.renderer.On("Render", mock.Anything, mock.MatchedBy(func(d string) bool {
		return strings.Contains(d, "SKU-2")
	})).Return(nil, ports.ErrRenderFailed).Times(3)
	p.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF-1.7 page"), nil).Times(2)
	p.documents.On("Save", mock.Anything, id, mock.Anything).Return(nil).Once()
	p.expectFinalized(batch.Partial)

	// When
	processed, err := p.run(t)

	// Then
	require.NoError(t, err)
	assert.Equal(t, batch.Partial, processed.Status())
	assert.Equal(t, 2, processed.SuccessCount())
	stored := p.store.batch(id)
	assert.Equal(t, batch.Partial, stored.Status())
	assert.Equal(t, 2, stored.SuccessCount())
	assert.Equal(t, testFunds-2*testPrice, p.store.balance(owner), "refund of 1 unit")

	records := p.store.records(id)
	require.Len(t, records, 3)
	assert.Equal(t, result.Completed, records[0].Status())
	assert.Equal(t, result.Failed, records[1].Status())
	assert.Equal(t, result.Completed, records[2].Status())

	p.renderer.AssertExpectations(t)
}

func TestProcessBatch_PanicIsBatchCrash(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 3)

	p.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil).Once()
	p.renderer.On("Render", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("renderer exploded")
	}).Once()
	p.expectFinalized(batch.Failed)

	// When
	processed, err := p.run(t)

	// Then
	require.NoError(t, err)
	assert.Equal(t, batch.Failed, processed.Status())
	stored := p.store.batch(id)
	assert.Equal(t, batch.Failed, stored.Status())
	assert.Equal(t, 0, stored.SuccessCount())
	assert.Equal(t, testFunds, p.store.balance(owner))
	assert.Equal(t, 1, p.store.incidentCount())
}

func TestProcessBatch_DocumentFailureIsBatchCrash(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 2)

	p.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil).Times(2)
	p.documents.On("Save", mock.Anything, id, mock.Anything).Return(errors.New("disk full")).Once()
	p.expectFinalized(batch.Failed)

	// When
	_, err := p.run(t)

	// Then
	require.NoError(t, err)
	stored := p.store.batch(id)
	assert.Equal(t, batch.Failed, stored.Status())
	assert.Equal(t, testFunds, p.store.balance(owner))
	assert.Equal(t, 1, p.store.incidentCount())
}

func TestProcessBatch_Conservation(t *testing.T) {
	for failing := 0; failing <= 4; failing++ {
		t.Run(fmt.Sprintf("%d failing rows", failing), func(t *testing.T) {
			p := newPipeline(t)
			owner := kernel.NewUUID()
			p.store.setBalance(owner, testFunds)
			id := p.submit(t, owner, 4)

			for i := 1; i <= failing; i++ {
				sku := fmt.Sprintf("SKU-%d", i)
				p.renderer.On("Render", mock.Anything, mock.MatchedBy(func(d string) bool {
					return strings.Contains(d, sku)
				})).Return(nil, ports.ErrRenderRateLimited)
			}
			p.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
			p.documents.On("Save", mock.Anything, id, mock.Anything).Return(nil).Maybe()
			p.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

			_, err := p.run(t)
			require.NoError(t, err)

			stored := p.store.batch(id)
			refunded := int(p.store.balance(owner)-(testFunds-4*testPrice)) / int(testPrice)
			assert.Equal(t, stored.RequestedCount(), stored.SuccessCount()+refunded)
			assert.Equal(t, 4-failing, stored.SuccessCount())
		})
	}
}

func TestProcessBatch_NothingQueued(t *testing.T) {
	p := newPipeline(t)

	_, err := p.run(t)

	require.ErrorIs(t, err, commands.ErrNoBatchQueued)
	p.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestClaimBatch_ExactlyOnce(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 1)

	// When
	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed []kernel.UUID
		idle    int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, _ := commands.NewClaimBatchCommand(services.GeneralLane)
			b, err := p.claimer.Handle(t.Context(), cmd)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				claimed = append(claimed, b.ID())
			case errors.Is(err, commands.ErrNoBatchQueued), errors.Is(err, commands.ErrClaimConflict):
				idle++
			}
		}()
	}
	wg.Wait()

	// Then
	require.Len(t, claimed, 1)
	assert.True(t, claimed[0].IsEqual(id))
	assert.Equal(t, workers-1, idle)
	assert.Equal(t, batch.Processing, p.store.batch(id).Status())
}

func TestClaimBatch_SingleItemLane(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	p.submit(t, owner, 3)

	cmd, err := commands.NewClaimBatchCommand(services.SingleItemLane)
	require.NoError(t, err)

	// When
	_, err = p.claimer.Handle(t.Context(), cmd)

	// Then
	require.ErrorIs(t, err, commands.ErrNoBatchQueued)

	// Given
	other := kernel.NewUUID()
	p.store.setBalance(other, testFunds)
	single := p.submit(t, other, 1)

	// When
	b, err := p.claimer.Handle(t.Context(), cmd)

	// Then
	require.NoError(t, err)
	assert.True(t, b.ID().IsEqual(single))
}

func TestClaimBatch_ConflictWhenStatusChanged(t *testing.T) {
	// Given
	ctx := t.Context()
	queued, err := batch.NewBatch(kernel.NewUUID(), kernel.NewUUID(), 2, testTemplate, testRate, testPrice, time.Now())
	require.NoError(t, err)

	batchRepo := new(MockBatchRepository)
	settingsRepo := new(MockSettingsRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	uow.On("SettingsRepository").Return(settingsRepo)
	uow.On("BatchRepository").Return(batchRepo)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		settingsRepo.On("IsPaused", ctx).Return(false, nil).Once(),
		batchRepo.On("ListByStatus", ctx, batch.Queued).Return([]*batch.Batch{queued}, nil).Once(),
		batchRepo.On("Update", ctx, queued, batch.Queued).Return(false, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	cmd, err := commands.NewClaimBatchCommand(services.GeneralLane)
	require.NoError(t, err)

	// When
	_, err = commands.NewClaimBatchCommandHandler(factory, kernel.NewSeededRand(1)).Handle(ctx, cmd)

	// Then
	require.ErrorIs(t, err, commands.ErrClaimConflict)
	uow.AssertNotCalled(t, "Commit", ctx)
	batchRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestClaimBatch_Paused(t *testing.T) {
	// Given
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 1)

	pause := commands.NewSetWorkerPausedCommandHandler(memSettingsUoWFactory{p.store}, discardLogger())
	require.NoError(t, pause.Handle(t.Context(), commands.NewSetWorkerPausedCommand(true)))

	// When
	_, err := p.run(t)

	// Then
	require.ErrorIs(t, err, commands.ErrWorkerPaused)
	assert.Equal(t, batch.Queued, p.store.batch(id).Status())

	require.NoError(t, pause.Handle(t.Context(), commands.NewSetWorkerPausedCommand(false)))
	cmd, _ := commands.NewClaimBatchCommand(services.GeneralLane)
	b, err := p.claimer.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.True(t, b.ID().IsEqual(id))
}

func TestEnqueueBatch_InsufficientFunds(t *testing.T) {
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, 2*testPrice)

	cmd, err := commands.NewEnqueueBatchCommand(owner, testRows(t, 3), testTemplate, testRate)
	require.NoError(t, err)

	_, err = p.enqueue.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, commands.ErrInsufficientFunds)
	assert.Equal(t, 2*testPrice, p.store.balance(owner))
	queued, _ := memBatches{p.store}.ListByStatus(t.Context(), batch.Queued)
	assert.Empty(t, queued)
}

func TestEnqueueBatch_OwnerPrice(t *testing.T) {
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	p.store.state.prices[owner.String()+"|"+testRate] = 99

	id := p.submit(t, owner, 2)

	assert.Equal(t, kernel.Cents(99), p.store.batch(id).UnitPrice())
	assert.Equal(t, testFunds-198, p.store.balance(owner))
}

func TestEnqueueBatch_UnknownTemplateOrRate(t *testing.T) {
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)

	cmd, err := commands.NewEnqueueBatchCommand(owner, testRows(t, 1), "nope", testRate)
	require.NoError(t, err)
	_, err = p.enqueue.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, commands.ErrUnknownTemplate)

	cmd, err = commands.NewEnqueueBatchCommand(owner, testRows(t, 1), testTemplate, "00000")
	require.NoError(t, err)
	_, err = p.enqueue.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	assert.Equal(t, testFunds, p.store.balance(owner))
}

func TestFinalizeBatch_NotProcessing(t *testing.T) {
	p := newPipeline(t)
	owner := kernel.NewUUID()
	p.store.setBalance(owner, testFunds)
	id := p.submit(t, owner, 2)

	cmd, err := commands.NewFinalizeBatchCommand(id, 1)
	require.NoError(t, err)

	_, _, err = p.finalizer.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Equal(t, batch.Queued, p.store.batch(id).Status())
	assert.Equal(t, testFunds-2*testPrice, p.store.balance(owner))
}
