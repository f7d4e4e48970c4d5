package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/incident"
)

// WorkerPausedSetting is the system_settings key of the worker pause flag.
const WorkerPausedSetting = "worker_paused"

// Heartbeat is the last liveness signal of one worker.
type Heartbeat struct {
	WorkerID string
	Lane     string
	At       time.Time
}

// SettingsRepository holds process-wide operator state in the Job Store.
type SettingsRepository interface {
	IsPaused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
	RecordHeartbeat(ctx context.Context, hb Heartbeat) error
	ListHeartbeats(ctx context.Context) ([]Heartbeat, error)
}

// IncidentRepository is the operator-only error log.
type IncidentRepository interface {
	Add(ctx context.Context, i *incident.Incident) error
}
