package commands_test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// memStore is a transactional in-memory Job Store. A transaction holds the
// store lock from Begin to Commit or Rollback; Rollback restores the snapshot
// taken at Begin.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	batches    map[kernel.UUID]*batch.Batch
	rows       map[kernel.UUID][]shipment.Row
	results    []*result.Record
	nextResult int64
	balances   map[kernel.UUID]kernel.Cents
	prices     map[string]kernel.Cents
	paused     bool
	heartbeats map[string]ports.Heartbeat
	incidents  []*incident.Incident
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		batches:    map[kernel.UUID]*batch.Batch{},
		rows:       map[kernel.UUID][]shipment.Row{},
		balances:   map[kernel.UUID]kernel.Cents{},
		prices:     map[string]kernel.Cents{},
		heartbeats: map[string]ports.Heartbeat{},
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		batches:    make(map[kernel.UUID]*batch.Batch, len(s.batches)),
		rows:       make(map[kernel.UUID][]shipment.Row, len(s.rows)),
		results:    make([]*result.Record, 0, len(s.results)),
		nextResult: s.nextResult,
		balances:   make(map[kernel.UUID]kernel.Cents, len(s.balances)),
		prices:     make(map[string]kernel.Cents, len(s.prices)),
		paused:     s.paused,
		heartbeats: make(map[string]ports.Heartbeat, len(s.heartbeats)),
		incidents:  slices.Clone(s.incidents),
	}
	for k, v := range s.batches {
		c.batches[k] = cloneBatch(v, v.Status(), v.SuccessCount())
	}
	for k, v := range s.rows {
		c.rows[k] = slices.Clone(v)
	}
	for _, r := range s.results {
		c.results = append(c.results, cloneRecord(r, r.Status()))
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.prices {
		c.prices[k] = v
	}
	for k, v := range s.heartbeats {
		c.heartbeats[k] = v
	}
	return c
}

func cloneBatch(b *batch.Batch, status batch.Status, success int) *batch.Batch {
	c, err := batch.RestoreBatch(b.ID(), b.Owner(), b.RequestedCount(), success, status,
		b.Template(), b.RateVersion(), b.UnitPrice(), b.SubmittedAt())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneRecord(r *result.Record, status result.Status) *result.Record {
	c, err := result.RestoreRecord(r.ID(), r.BatchID(), r.Owner(), r.Seq(), r.ItemReference(), r.OrderReference(),
		r.Tracking(), status, r.Parties(), r.RateVersion(), r.CreatedAt())
	if err != nil {
		panic(err)
	}
	return c
}

// Test helpers; they take the store lock themselves.

func (m *memStore) putBatch(b *batch.Batch, rows []shipment.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.batches[b.ID()] = cloneBatch(b, b.Status(), b.SuccessCount())
	m.state.rows[b.ID()] = slices.Clone(rows)
}

func (m *memStore) putRecord(r *result.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextResult++
	m.state.results = append(m.state.results, r)
}

func (m *memStore) setBalance(owner kernel.UUID, c kernel.Cents) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.balances[owner] = c
}

func (m *memStore) balance(owner kernel.UUID) kernel.Cents {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.balances[owner]
}

func (m *memStore) batch(id kernel.UUID) *batch.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.state.batches[id]
	if b == nil {
		return nil
	}
	return cloneBatch(b, b.Status(), b.SuccessCount())
}

func (m *memStore) records(id kernel.UUID) []*result.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*result.Record
	for _, r := range m.state.results {
		if r.BatchID().IsEqual(id) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) incidentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.incidents)
}

type memUoW struct {
	store    *memStore
	snapshot *memState
	active   bool
}

func (u *memUoW) Begin(context.Context) error {
	u.store.mu.Lock()
	u.snapshot = u.store.state.clone()
	u.active = true
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if !u.active {
		return nil
	}
	u.active = false
	u.store.mu.Unlock()
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	if !u.active {
		return nil
	}
	u.store.state = u.snapshot
	u.active = false
	u.store.mu.Unlock()
	return nil
}

func (u *memUoW) BatchRepository() ports.BatchRepository       { return memBatches{u.store} }
func (u *memUoW) ShipmentRepository() ports.ShipmentRepository { return memShipments{u.store} }
func (u *memUoW) ResultRepository() ports.ResultRepository     { return memResults{u.store} }
func (u *memUoW) LedgerRepository() ports.LedgerRepository     { return memLedger{u.store} }
func (u *memUoW) PricingRepository() ports.PricingRepository   { return memPricing{u.store} }
func (u *memUoW) SettingsRepository() ports.SettingsRepository { return memSettings{u.store} }
func (u *memUoW) IncidentRepository() ports.IncidentRepository { return memIncidents{u.store} }

type memUoWFactory struct{ store *memStore }

func (f memUoWFactory) Create() commands.UoW { return &memUoW{store: f.store} }

type memSettingsUoWFactory struct{ store *memStore }

func (f memSettingsUoWFactory) Create() commands.SettingsUoW { return &memUoW{store: f.store} }

type memIncidentUoWFactory struct{ store *memStore }

func (f memIncidentUoWFactory) Create() commands.IncidentUoW { return &memUoW{store: f.store} }

type memBatches struct{ store *memStore }

func (r memBatches) Add(_ context.Context, b *batch.Batch) error {
	r.store.state.batches[b.ID()] = cloneBatch(b, b.Status(), b.SuccessCount())
	return nil
}

func (r memBatches) Get(_ context.Context, id kernel.UUID) (*batch.Batch, error) {
	b, ok := r.store.state.batches[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("batch", id)
	}
	return cloneBatch(b, b.Status(), b.SuccessCount()), nil
}

func (r memBatches) ListByStatus(_ context.Context, status batch.Status) ([]*batch.Batch, error) {
	var out []*batch.Batch
	for _, b := range r.store.state.batches {
		if b.Status() == status {
			out = append(out, cloneBatch(b, b.Status(), b.SuccessCount()))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt().Before(out[j].SubmittedAt()) })
	return out, nil
}

func (r memBatches) Update(_ context.Context, b *batch.Batch, expected batch.Status) (bool, error) {
	stored, ok := r.store.state.batches[b.ID()]
	if !ok || stored.Status() != expected {
		return false, nil
	}
	r.store.state.batches[b.ID()] = cloneBatch(stored, b.Status(), b.SuccessCount())
	return true, nil
}

func (r memBatches) IncrementSuccess(_ context.Context, id kernel.UUID) (bool, error) {
	stored, ok := r.store.state.batches[id]
	if !ok || stored.SuccessCount() >= stored.RequestedCount() {
		return false, nil
	}
	r.store.state.batches[id] = cloneBatch(stored, stored.Status(), stored.SuccessCount()+1)
	return true, nil
}

func (r memBatches) ListTerminalBefore(_ context.Context, cutoff time.Time) ([]*batch.Batch, error) {
	var out []*batch.Batch
	for _, b := range r.store.state.batches {
		if b.Status().IsTerminal() && b.SubmittedAt().Before(cutoff) {
			out = append(out, cloneBatch(b, b.Status(), b.SuccessCount()))
		}
	}
	return out, nil
}

func (r memBatches) Delete(_ context.Context, ids []kernel.UUID) error {
	for _, id := range ids {
		delete(r.store.state.batches, id)
	}
	return nil
}

type memShipments struct{ store *memStore }

func (r memShipments) AddAll(_ context.Context, batchID kernel.UUID, rows []shipment.Row) error {
	r.store.state.rows[batchID] = append(r.store.state.rows[batchID], rows...)
	return nil
}

func (r memShipments) ListByBatch(_ context.Context, batchID kernel.UUID) ([]shipment.Row, error) {
	return slices.Clone(r.store.state.rows[batchID]), nil
}

func (r memShipments) DeleteByBatches(_ context.Context, batchIDs []kernel.UUID) error {
	for _, id := range batchIDs {
		delete(r.store.state.rows, id)
	}
	return nil
}

type memResults struct{ store *memStore }

func (r memResults) Add(_ context.Context, rec *result.Record) error {
	r.store.state.nextResult++
	r.store.state.results = append(r.store.state.results, cloneRecord(rec, rec.Status()))
	return nil
}

func (r memResults) ListByBatch(_ context.Context, batchID kernel.UUID) ([]*result.Record, error) {
	var out []*result.Record
	for _, rec := range r.store.state.results {
		if rec.BatchID().IsEqual(batchID) {
			out = append(out, cloneRecord(rec, rec.Status()))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq() < out[j].Seq() })
	return out, nil
}

func (r memResults) MarkConfirmed(_ context.Context, batchID kernel.UUID, trackingNumbers []string) (int64, error) {
	var n int64
	for i, rec := range r.store.state.results {
		if !rec.BatchID().IsEqual(batchID) || rec.Status() != result.Completed {
			continue
		}
		if slices.Contains(trackingNumbers, rec.Tracking().String()) {
			r.store.state.results[i] = cloneRecord(rec, result.Confirmed)
			n++
		}
	}
	return n, nil
}

func (r memResults) DeleteByBatches(_ context.Context, batchIDs []kernel.UUID) error {
	r.store.state.results = slices.DeleteFunc(r.store.state.results, func(rec *result.Record) bool {
		return slices.ContainsFunc(batchIDs, rec.BatchID().IsEqual)
	})
	return nil
}

type memLedger struct{ store *memStore }

func (r memLedger) Credit(_ context.Context, owner kernel.UUID, amount kernel.Cents) error {
	r.store.state.balances[owner] += amount
	return nil
}

func (r memLedger) DebitIfSufficient(_ context.Context, owner kernel.UUID, amount kernel.Cents) (bool, error) {
	if r.store.state.balances[owner] < amount {
		return false, nil
	}
	r.store.state.balances[owner] -= amount
	return true, nil
}

func (r memLedger) Balance(_ context.Context, owner kernel.UUID) (kernel.Cents, error) {
	return r.store.state.balances[owner], nil
}

type memPricing struct{ store *memStore }

func (r memPricing) UnitPrice(_ context.Context, owner kernel.UUID, rateVersion string) (kernel.Cents, error) {
	p, ok := r.store.state.prices[owner.String()+"|"+rateVersion]
	if !ok {
		return 0, errs.NewObjectNotFoundError("price", rateVersion)
	}
	return p, nil
}

type memSettings struct{ store *memStore }

func (r memSettings) IsPaused(context.Context) (bool, error) { return r.store.state.paused, nil }

func (r memSettings) SetPaused(_ context.Context, paused bool) error {
	r.store.state.paused = paused
	return nil
}

func (r memSettings) RecordHeartbeat(_ context.Context, hb ports.Heartbeat) error {
	r.store.state.heartbeats[hb.WorkerID] = hb
	return nil
}

func (r memSettings) ListHeartbeats(context.Context) ([]ports.Heartbeat, error) {
	out := make([]ports.Heartbeat, 0, len(r.store.state.heartbeats))
	for _, hb := range r.store.state.heartbeats {
		out = append(out, hb)
	}
	return out, nil
}

type memIncidents struct{ store *memStore }

func (r memIncidents) Add(_ context.Context, i *incident.Incident) error {
	r.store.state.incidents = append(r.store.state.incidents, i)
	return nil
}
