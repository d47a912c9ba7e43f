package models

import "time"

// LogEntry is the persistent audit trail. Every task and shop action is
// written here; entries older than the retention window are pruned by
// the prune_old_logs task.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Event     string    `gorm:"size:100;not null;index"`
	Level     string    `gorm:"size:16;not null"`
	Store     string    `gorm:"size:255;index"`
	TaskID    string    `gorm:"size:36;index"`
	Data      JSONMap   `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
}
