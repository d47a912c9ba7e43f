package models

import "time"

// CacheEntry backs the barcode-lookup and AI response caches.
type CacheEntry struct {
	ID        uint    `gorm:"primaryKey"`
	Key       string  `gorm:"size:255;not null;uniqueIndex"`
	Data      JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
