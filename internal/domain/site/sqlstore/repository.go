// Package sqlstore persists blueprints with gorm on SQLite or Postgres.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
)

// Driver selects the SQL dialect
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config selects and locates the database
type Config struct {
	Driver Driver
	// DSN is a file path for SQLite or a connection URL for Postgres
	DSN      string
	LogLevel string
}

// record is the table row for a blueprint. Root holds the wire-format JSON.
type record struct {
	ID        string    `gorm:"primaryKey;size:64"`
	OwnerID   string    `gorm:"size:128;not null;index:idx_blueprints_owner_created,priority:1"`
	Title     string    `gorm:"size:1024;not null"`
	Root      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_blueprints_owner_created,priority:2"`
}

func (record) TableName() string { return "blueprints" }

// Repository is a gorm-backed site.Repository
type Repository struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema
func Open(cfg Config) (*Repository, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("invalid database driver: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

// Insert stores a new blueprint row
func (r *Repository) Insert(ctx context.Context, bp *site.Blueprint) error {
	root, err := json.Marshal(bp.Root)
	if err != nil {
		return fmt.Errorf("failed to marshal blueprint: %w", err)
	}
	rec := record{
		ID:        bp.ID,
		OwnerID:   bp.OwnerID,
		Title:     bp.Title,
		Root:      string(root),
		CreatedAt: bp.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

// ListByOwner returns the owner's blueprints, newest first
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*site.Blueprint, error) {
	var recs []record
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]*site.Blueprint, 0, len(recs))
	for i := range recs {
		bp, err := recs[i].blueprint()
		if err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, nil
}

// Get loads a blueprint by id
func (r *Repository) Get(ctx context.Context, id string) (*site.Blueprint, error) {
	var rec record
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, site.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.blueprint()
}

// Close closes the underlying connection pool
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (rec *record) blueprint() (*site.Blueprint, error) {
	// Limits are not reapplied to stored trees.
	root, err := blueprint.ParseWithOptions([]byte(rec.Root), blueprint.ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("corrupt blueprint %s: %w", rec.ID, err)
	}
	return &site.Blueprint{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Title:     rec.Title,
		Root:      root,
		CreatedAt: rec.CreatedAt.UTC(),
	}, nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	default:
		return logger.Silent
	}
}
