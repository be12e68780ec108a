package models

import "time"

// SyncCheckpoint is the named watermark a polling job advances after each
// successful run.
type SyncCheckpoint struct {
	Name         string    `gorm:"column:name;primaryKey"`
	LastSyncedAt time.Time `gorm:"column:last_synced_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
