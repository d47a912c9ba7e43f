package tasks

import (
	"time"

	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
)

const logRetention = 30 * 24 * time.Hour

// PruneLogs deletes log entries older than the retention window.
func PruneLogs(now time.Time) (int64, error) {
	taskID := logging.L.TaskStart("prune_old_logs")
	start := time.Now()

	cutoff := now.Add(-logRetention)
	res := database.DB.Where("created_at < ?", cutoff).Delete(&models.LogEntry{})
	if res.Error != nil {
		return 0, res.Error
	}

	logging.L.Log("old_logs_pruned", logging.LevelInfo, "", taskID, models.JSONMap{
		"deleted": res.RowsAffected,
		"cutoff":  cutoff.Format(time.RFC3339),
	})
	logging.L.TaskEnd(taskID, "prune_old_logs", int(res.RowsAffected), 0, time.Since(start), 0)
	return res.RowsAffected, nil
}
