package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"l3gen/internal/domain"
)

// Storage persists ingested analytics data in a local SQLite database.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path and migrates
// the analytics schema.
func NewStorage(path string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.TradeTick{}, &domain.RunSummary{}, &domain.DepthLevel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Trade time-series operations
// ======================================================================================

// SaveTicks inserts a batch of trade ticks.
func (s *Storage) SaveTicks(ticks []domain.TradeTick, batchSize int) error {
	if len(ticks) == 0 {
		return nil
	}
	return s.db.CreateInBatches(ticks, batchSize).Error
}

// CountTicks returns the number of ticks stored for a run.
func (s *Storage) CountTicks(runID string) (int64, error) {
	var n int64
	err := s.db.Model(&domain.TradeTick{}).Where("run_id = ?", runID).Count(&n).Error
	return n, err
}

// ======================================================================================
// Summary operations
// ======================================================================================

// SaveSummary creates or updates the aggregate summary of a run.
func (s *Storage) SaveSummary(sum *domain.RunSummary) error {
	return s.db.Save(sum).Error
}

// GetSummary retrieves a run summary by run id.
func (s *Storage) GetSummary(runID string) (*domain.RunSummary, error) {
	var sum domain.RunSummary
	err := s.db.First(&sum, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &sum, err
}

// ======================================================================================
// Depth profile operations
// ======================================================================================

// SaveDepth inserts the depth profile levels of a run.
func (s *Storage) SaveDepth(levels []domain.DepthLevel) error {
	if len(levels) == 0 {
		return nil
	}
	return s.db.Create(levels).Error
}

// GetDepth retrieves the depth profile of a run, one row per level per side.
func (s *Storage) GetDepth(runID string) ([]domain.DepthLevel, error) {
	var levels []domain.DepthLevel
	err := s.db.Where("run_id = ?", runID).
		Order("side, level").
		Find(&levels).Error
	return levels, err
}
