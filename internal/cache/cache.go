// Package cache is a small database-backed response cache used by the
// barcode-lookup and AI enrichment tasks to avoid paying for repeat
// external calls.
package cache

import (
	"errors"

	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Cache struct {
	prefix  string
	enabled bool
}

func New(prefix string, enabled bool) *Cache {
	return &Cache{prefix: prefix, enabled: enabled}
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get returns the cached payload for key, or nil on a miss.
func (c *Cache) Get(key string) (models.JSONMap, error) {
	if !c.enabled {
		return nil, nil
	}

	var entry models.CacheEntry
	err := database.DB.Where("key = ?", c.prefix+key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Data, nil
}

func (c *Cache) Set(key string, data models.JSONMap) error {
	if !c.enabled {
		return nil
	}

	entry := models.CacheEntry{Key: c.prefix + key, Data: data}
	return database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&entry).Error
}
