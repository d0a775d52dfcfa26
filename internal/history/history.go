// Package history records completed stage runs in a local SQLite database
// so operators can audit what the agents did and when.
// This package is internal and should not be imported by external projects.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// StageRun is one audit row per completed stage.
type StageRun struct {
	ID           uint   `gorm:"primaryKey"`
	Stage        string `gorm:"index;size:32"`
	Status       string `gorm:"size:16"` // ok or failed
	InstanceIDs  string `gorm:"size:4096"`
	JobIDs       string `gorm:"size:1024"`
	ErrorCode    string `gorm:"size:32"`
	ErrorMessage string `gorm:"size:2048"`
	DurationMS   int64
	CreatedAt    time.Time `gorm:"index"`
}

// Recorder persists stage runs.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open creates or opens the history database at path and migrates the
// schema.
func Open(path string, logger *zap.Logger) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.AutoMigrate(&StageRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Recorder{
		db:     db,
		logger: logger.With(zap.String("component", "history")),
	}, nil
}

// Record writes one audit row for a finished stage. Failures are logged,
// not returned: history must never break the workflow.
func (r *Recorder) Record(result *types.StageResult, elapsed time.Duration) {
	row := StageRun{
		Stage:       result.Stage,
		Status:      "ok",
		InstanceIDs: strings.Join(result.InstanceIDs, ","),
		JobIDs:      strings.Join(result.JobIDs, ","),
		DurationMS:  elapsed.Milliseconds(),
	}
	if !result.OK {
		row.Status = "failed"
		if result.Error != nil {
			row.ErrorCode = string(result.Error.Code)
			row.ErrorMessage = result.Error.Message
		}
	}

	if err := r.db.Create(&row).Error; err != nil {
		r.logger.Warn("failed to record stage run", zap.Error(err))
	}
}

// Recent returns the newest runs, most recent first.
func (r *Recorder) Recent(limit int) ([]StageRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []StageRun
	if err := r.db.Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to query stage runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying database connection.
func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
