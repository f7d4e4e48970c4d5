// Package settingsrepo persists operator settings and worker heartbeats.
package settingsrepo

import "time"

// SystemSettingDTO is one key/value operator setting.
type SystemSettingDTO struct {
	Key   string `gorm:"size:64;primaryKey"`
	Value string `gorm:"not null"`
}

func (SystemSettingDTO) TableName() string {
	return "system_settings"
}

// WorkerHeartbeatDTO is the last liveness beat of one worker.
type WorkerHeartbeatDTO struct {
	WorkerID string    `gorm:"size:64;primaryKey"`
	Lane     string    `gorm:"size:16;not null"`
	At       time.Time `gorm:"not null"`
}

func (WorkerHeartbeatDTO) TableName() string {
	return "worker_heartbeats"
}
