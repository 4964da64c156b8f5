// Package history provides local deployment history tracking using GORM and
// SQLite. The deployment pipeline never touches this store; the CLI persists
// results here alongside the prompts that produced them.
package history

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sentinel errors following Dave Cheney's principle: define errors as values
var (
	ErrNilRecord = errors.New("record cannot be nil")
	ErrNotFound  = errors.New("record not found")
)

// Record is one persisted deployment outcome with its originating prompt.
type Record struct {
	ID uint `gorm:"primaryKey"`

	ProjectName  string `gorm:"not null;index"`
	DeploymentID string
	URL          string `gorm:"not null"`
	Method       string `gorm:"not null"`
	Success      bool   `gorm:"not null;default:false"`
	Warning      string
	Prompt       string `gorm:"type:text"`

	DeployedAt time.Time `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines the interface for history storage operations.
type Store interface {
	Close() error
	Save(*Record) error
	List(limit int) ([]*Record, error)
	ListByProject(projectName string) ([]*Record, error)
	Latest(projectName string) (*Record, error)
}

// DB wraps gorm.DB with history operations.
type DB struct {
	db *gorm.DB
}

// Config holds database configuration.
type Config struct {
	DatabasePath string
	LogLevel     string // silent, error, warn, info
}

// InitDB initializes the database connection and runs migrations.
func InitDB(cfg Config) (*DB, error) {
	logLevel := logger.Silent
	switch cfg.LogLevel {
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// Save creates a new history record.
func (d *DB) Save(record *Record) error {
	if record == nil {
		return ErrNilRecord
	}
	if record.DeployedAt.IsZero() {
		record.DeployedAt = time.Now()
	}
	if err := d.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first. A non-positive limit
// returns everything.
func (d *DB) List(limit int) ([]*Record, error) {
	var records []*Record
	q := d.db.Order("deployed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return records, nil
}

// ListByProject returns all records for a project, newest first.
func (d *DB) ListByProject(projectName string) ([]*Record, error) {
	var records []*Record
	if err := d.db.Where("project_name = ?", projectName).
		Order("deployed_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history for project %s: %w", projectName, err)
	}
	return records, nil
}

// Latest returns the most recent record for a project.
func (d *DB) Latest(projectName string) (*Record, error) {
	var record Record
	err := d.db.Where("project_name = ?", projectName).
		Order("deployed_at DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record for %s: %w", projectName, err)
	}
	return &record, nil
}
