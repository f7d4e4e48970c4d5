package settingsrepo

import (
	"context"
	"errors"
	"strconv"

	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements ports.SettingsRepository using GORM.
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// IsPaused reads the pause flag; a missing row means not paused.
func (r *GormSettingsRepository) IsPaused(ctx context.Context) (bool, error) {
	var dto SystemSettingDTO
	err := r.db.WithContext(ctx).First(&dto, "key = ?", ports.WorkerPausedSetting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(dto.Value)
}

func (r *GormSettingsRepository) SetPaused(ctx context.Context, paused bool) error {
	dto := SystemSettingDTO{Key: ports.WorkerPausedSetting, Value: strconv.FormatBool(paused)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&dto).Error
}

// RecordHeartbeat upserts the worker's beat.
func (r *GormSettingsRepository) RecordHeartbeat(ctx context.Context, hb ports.Heartbeat) error {
	dto := WorkerHeartbeatDTO{WorkerID: hb.WorkerID, Lane: hb.Lane, At: hb.At.UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "worker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"lane", "at"}),
	}).Create(&dto).Error
}

// ListHeartbeats returns every worker's last beat ordered by worker id.
func (r *GormSettingsRepository) ListHeartbeats(ctx context.Context) ([]ports.Heartbeat, error) {
	var dtos []WorkerHeartbeatDTO
	if err := r.db.WithContext(ctx).Order("worker_id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	out := make([]ports.Heartbeat, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, ports.Heartbeat{WorkerID: dto.WorkerID, Lane: dto.Lane, At: dto.At.UTC()})
	}
	return out, nil
}
