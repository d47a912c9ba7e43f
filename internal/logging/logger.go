// Package logging writes every event to the logs table and mirrors it
// to a zap logger. The database is the canonical sink; the prune task
// owns retention.
package logging

import (
	"time"

	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

type AppLogger struct {
	zl *zap.Logger
}

// L is the process-wide logger. Init must run before first use; tests
// may assign a Nop logger instead.
var L = Nop()

func Init(cfg *config.Config) error {
	var (
		zl  *zap.Logger
		err error
	)
	if cfg.IsDev() {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	L = &AppLogger{zl: zl}
	return nil
}

// Nop returns a logger that drops console output. Database persistence
// still happens when a connection is available.
func Nop() *AppLogger {
	return &AppLogger{zl: zap.NewNop()}
}

func (l *AppLogger) Sync() {
	_ = l.zl.Sync()
}

// Log records one event. store and taskID may be empty.
func (l *AppLogger) Log(event, level, store, taskID string, data models.JSONMap) {
	if database.DB != nil {
		entry := models.LogEntry{
			Event:  event,
			Level:  level,
			Store:  store,
			TaskID: taskID,
			Data:   data,
		}
		if err := database.DB.Create(&entry).Error; err != nil {
			l.zl.Warn("log entry persist failed", zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.String("event", event),
		zap.Any("data", map[string]any(data)),
	}
	if store != "" {
		fields = append(fields, zap.String("store", store))
	}
	if taskID != "" {
		fields = append(fields, zap.String("task_id", taskID))
	}
	l.zl.Log(zapLevel(level), event, fields...)
}

// TaskStart logs the start of a named task and returns its correlation ID.
func (l *AppLogger) TaskStart(event string) string {
	taskID := uuid.NewString()
	l.Log(event+"_started", LevelInfo, "", taskID, models.JSONMap{
		"message": "Task started",
	})
	return taskID
}

func (l *AppLogger) TaskEnd(taskID, event string, success, failed int, duration time.Duration, cacheHits int) {
	l.Log(event+"_completed", LevelSuccess, "", taskID, models.JSONMap{
		"message":          "Task completed",
		"success_count":    success,
		"failed_count":     failed,
		"cache_hits":       cacheHits,
		"duration_seconds": duration.Round(10 * time.Millisecond).Seconds(),
	})
}

func (l *AppLogger) ProductError(barcode, taskID string, err error) {
	l.Log("product_error", LevelError, "", taskID, models.JSONMap{
		"barcode": barcode,
		"error":   err.Error(),
	})
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
