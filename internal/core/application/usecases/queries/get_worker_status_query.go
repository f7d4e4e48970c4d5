package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetWorkerStatusQueryIsNotConstructed = errors.New(
		"GetWorkerStatusQuery must be created via NewGetWorkerStatusQuery constructor",
	)
)

// WorkerState is derived from the age of a worker's last heartbeat.
type WorkerState string

const (
	WorkerOnline  WorkerState = "ONLINE"
	WorkerOffline WorkerState = "OFFLINE"
)

// recentIncidentLimit bounds the incidents returned with the worker status.
const recentIncidentLimit = 20

// GetWorkerStatusQuery is the operator view of the worker pool as of a
// point in time.
type GetWorkerStatusQuery struct {
	now   time.Time
	guard guard.ConstructorGuard
}

func NewGetWorkerStatusQuery(now time.Time) (GetWorkerStatusQuery, error) {
	if now.IsZero() {
		return GetWorkerStatusQuery{}, errs.NewValueIsRequiredError("now")
	}
	return GetWorkerStatusQuery{now: now.UTC(), guard: guard.NewConstructorGuard()}, nil
}

func (q GetWorkerStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkerStatusQueryIsNotConstructed)
}

func (q GetWorkerStatusQuery) Now() time.Time { return q.now }

// GetWorkerStatusQueryResponse summarizes the pool.
//
// Example:
//
//	{Paused: false, Queued: 3, Processing: 2,
//	 ActiveConfirmations: [7c1f...],
//	 Workers: [{WorkerID: "general-1", Lane: "general", State: ONLINE}, ...]}
type GetWorkerStatusQueryResponse struct {
	Paused              bool
	Queued              int
	Processing          int
	Confirming          int
	ActiveConfirmations []kernel.UUID
	Workers             []WorkerStatus
	RecentIncidents     []IncidentEntry
}

type WorkerStatus struct {
	WorkerID string
	Lane     string
	LastSeen time.Time
	State    WorkerState
}

// IncidentEntry is one operator error log line. BatchID is nil for incidents
// not tied to a batch.
type IncidentEntry struct {
	ID      int64
	Source  string
	BatchID *kernel.UUID
	Message string
	At      time.Time
}
