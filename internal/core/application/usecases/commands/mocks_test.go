package commands_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/session"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockBatchRepository struct{ mock.Mock }

func (m *MockBatchRepository) Add(ctx context.Context, b *batch.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Batch), args.Error(1)
}

func (m *MockBatchRepository) ListByStatus(ctx context.Context, status batch.Status) ([]*batch.Batch, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*batch.Batch), args.Error(1)
}

func (m *MockBatchRepository) Update(ctx context.Context, b *batch.Batch, expected batch.Status) (bool, error) {
	args := m.Called(ctx, b, expected)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepository) IncrementSuccess(ctx context.Context, id kernel.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepository) ListTerminalBefore(ctx context.Context, cutoff time.Time) ([]*batch.Batch, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*batch.Batch), args.Error(1)
}

func (m *MockBatchRepository) Delete(ctx context.Context, ids []kernel.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type MockSettingsRepository struct{ mock.Mock }

func (m *MockSettingsRepository) IsPaused(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsRepository) SetPaused(ctx context.Context, paused bool) error {
	args := m.Called(ctx, paused)
	return args.Error(0)
}

func (m *MockSettingsRepository) RecordHeartbeat(ctx context.Context, hb ports.Heartbeat) error {
	args := m.Called(ctx, hb)
	return args.Error(0)
}

func (m *MockSettingsRepository) ListHeartbeats(ctx context.Context) ([]ports.Heartbeat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.Heartbeat), args.Error(1)
}

// MockUoW exposes only the batch and settings repositories; handlers under
// test with it must not touch the others.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) BatchRepository() ports.BatchRepository {
	args := m.Called()
	return args.Get(0).(ports.BatchRepository)
}

func (m *MockUoW) SettingsRepository() ports.SettingsRepository {
	args := m.Called()
	return args.Get(0).(ports.SettingsRepository)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	panic("unexpected ShipmentRepository call")
}

func (m *MockUoW) ResultRepository() ports.ResultRepository {
	panic("unexpected ResultRepository call")
}

func (m *MockUoW) LedgerRepository() ports.LedgerRepository {
	panic("unexpected LedgerRepository call")
}

func (m *MockUoW) PricingRepository() ports.PricingRepository {
	panic("unexpected PricingRepository call")
}

func (m *MockUoW) IncidentRepository() ports.IncidentRepository {
	panic("unexpected IncidentRepository call")
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockSettingsUoWFactory struct{ mock.Mock }

func (m *MockSettingsUoWFactory) Create() commands.SettingsUoW {
	args := m.Called()
	return args.Get(0).(commands.SettingsUoW)
}

type MockLabelRenderer struct{ mock.Mock }

func (m *MockLabelRenderer) Render(ctx context.Context, description string) ([]byte, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockMarketplaceClient struct{ mock.Mock }

func (m *MockMarketplaceClient) ValidateSession(ctx context.Context, creds session.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *MockMarketplaceClient) GetOrder(ctx context.Context, creds session.Credentials, orderID string) (ports.MarketplaceOrder, error) {
	args := m.Called(ctx, creds, orderID)
	return args.Get(0).(ports.MarketplaceOrder), args.Error(1)
}

func (m *MockMarketplaceClient) ConfirmShipment(ctx context.Context, creds session.Credentials, c ports.ShipmentConfirmation) error {
	args := m.Called(ctx, creds, c)
	return args.Error(0)
}

type MockDocumentStore struct{ mock.Mock }

func (m *MockDocumentStore) Save(ctx context.Context, batchID kernel.UUID, pages [][]byte) error {
	args := m.Called(ctx, batchID, pages)
	return args.Error(0)
}

func (m *MockDocumentStore) Open(ctx context.Context, batchID kernel.UUID) (io.ReadCloser, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, batchID kernel.UUID) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, e ports.BatchEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// memDedup is a set-backed dedup cache that counts additions.
type memDedup struct {
	seen  map[string]bool
	adds  int
	err   error
	addFn func(string) error
}

func newMemDedup(seen ...string) *memDedup {
	d := &memDedup{seen: map[string]bool{}}
	for _, s := range seen {
		d.seen[s] = true
	}
	return d
}

func (d *memDedup) Contains(_ context.Context, trk string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.seen[trk], nil
}

func (d *memDedup) Add(_ context.Context, trk string) error {
	if d.addFn != nil {
		if err := d.addFn(trk); err != nil {
			return err
		}
	}
	d.adds++
	d.seen[trk] = true
	return nil
}

// staticRates serves the default tracking families.
type staticRates struct {
	price kernel.Cents
}

func (r staticRates) Family(version string) (tracking.Family, error) {
	for _, f := range tracking.DefaultFamilies() {
		if f.Version() == version {
			return f, nil
		}
	}
	return tracking.Family{}, errs.NewObjectNotFoundError("rate version", version)
}

func (r staticRates) DefaultUnitPrice() kernel.Cents { return r.price }
