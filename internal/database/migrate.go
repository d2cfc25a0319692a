package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded goose migrations through the GORM connection pool.
type Migrator struct {
	db  *gorm.DB
	log *slog.Logger
}

// NewMigrator creates a goose runner over the embedded migrations.
func NewMigrator(db *gorm.DB, log *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("database.NewMigrator: nil db")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("configure goose: %w", err)
	}
	return &Migrator{db: db, log: log}, nil
}

// Up applies pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("database.Migrator.Up: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	m.log.Info("applying migrations")
	if err := goose.UpContext(runCtx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	m.log.Info("migrations applied")
	return nil
}

// Status logs applied and pending migrations.
func (m *Migrator) Status(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("database.Migrator.Status: %w", err)
	}
	if err := goose.StatusContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}

// Down rolls back to targetVersion, or only the latest migration when targetVersion is 0.
func (m *Migrator) Down(ctx context.Context, targetVersion int64) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("database.Migrator.Down: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if targetVersion > 0 {
		m.log.Info("rolling back migrations", slog.Int64("target", targetVersion))
		if err := goose.DownToContext(runCtx, sqlDB, migrationsDir, targetVersion); err != nil {
			return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
		}
		return nil
	}

	m.log.Info("rolling back latest migration")
	if err := goose.DownContext(runCtx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("rollback latest migration: %w", err)
	}
	return nil
}
