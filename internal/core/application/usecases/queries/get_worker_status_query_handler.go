package queries

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmationRegistry reports the batches with a confirmation run in this process.
type ConfirmationRegistry interface {
	ActiveConfirmations() []kernel.UUID
}

type GetWorkerStatusQueryHandler struct {
	db            *gorm.DB
	confirmations ConfirmationRegistry
	staleAfter    time.Duration
}

// NewGetWorkerStatusQueryHandler creates the handler. A worker whose last
// heartbeat is older than staleAfter is reported OFFLINE.
func NewGetWorkerStatusQueryHandler(
	db *gorm.DB,
	confirmations ConfirmationRegistry,
	staleAfter time.Duration,
) GetWorkerStatusQueryHandler {
	return GetWorkerStatusQueryHandler{db: db, confirmations: confirmations, staleAfter: staleAfter}
}

func (h GetWorkerStatusQueryHandler) Handle(
	ctx context.Context,
	query GetWorkerStatusQuery,
) (GetWorkerStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWorkerStatusQueryResponse{}, err
	}

	var (
		resp GetWorkerStatusQueryResponse
		err  error
	)
	if resp.Paused, err = h.paused(ctx); err != nil {
		return GetWorkerStatusQueryResponse{}, err
	}
	if err = h.countStatuses(ctx, &resp); err != nil {
		return GetWorkerStatusQueryResponse{}, err
	}
	if resp.Workers, err = h.workers(ctx, query.Now()); err != nil {
		return GetWorkerStatusQueryResponse{}, err
	}
	if resp.RecentIncidents, err = h.incidents(ctx); err != nil {
		return GetWorkerStatusQueryResponse{}, err
	}

	resp.ActiveConfirmations = make([]kernel.UUID, 0)
	if h.confirmations != nil {
		resp.ActiveConfirmations = append(resp.ActiveConfirmations, h.confirmations.ActiveConfirmations()...)
	}
	return resp, nil
}

func (h GetWorkerStatusQueryHandler) paused(ctx context.Context) (bool, error) {
	var value string
	err := h.db.WithContext(ctx).
		Raw(`SELECT value FROM system_settings WHERE key = ?`, ports.WorkerPausedSetting).
		Row().
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

func (h GetWorkerStatusQueryHandler) countStatuses(ctx context.Context, resp *GetWorkerStatusQueryResponse) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*)
		FROM batches
		WHERE status IN ?
		GROUP BY status
	`, []string{batch.Queued.String(), batch.Processing.String(), batch.Confirming.String()}).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err = rows.Scan(&status, &count); err != nil {
			return err
		}
		switch batch.Status(status) {
		case batch.Queued:
			resp.Queued = count
		case batch.Processing:
			resp.Processing = count
		case batch.Confirming:
			resp.Confirming = count
		}
	}
	return rows.Err()
}

func (h GetWorkerStatusQueryHandler) workers(ctx context.Context, now time.Time) ([]WorkerStatus, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT worker_id, lane, at
		FROM worker_heartbeats
		ORDER BY worker_id
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]WorkerStatus, 0)
	for rows.Next() {
		var w WorkerStatus
		if err = rows.Scan(&w.WorkerID, &w.Lane, &w.LastSeen); err != nil {
			return nil, err
		}
		w.LastSeen = w.LastSeen.UTC()
		w.State = WorkerOnline
		if now.Sub(w.LastSeen) > h.staleAfter {
			w.State = WorkerOffline
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (h GetWorkerStatusQueryHandler) incidents(ctx context.Context) ([]IncidentEntry, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, source, batch_id, message, at
		FROM incidents
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, recentIncidentLimit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]IncidentEntry, 0)
	for rows.Next() {
		var (
			e       IncidentEntry
			batchID uuid.NullUUID
		)
		if err = rows.Scan(&e.ID, &e.Source, &batchID, &e.Message, &e.At); err != nil {
			return nil, err
		}
		if batchID.Valid {
			id, idErr := toKernelID(batchID.UUID)
			if idErr != nil {
				return nil, idErr
			}
			e.BatchID = &id
		}
		e.At = e.At.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
