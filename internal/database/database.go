package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/portfolio-backend/internal/config"
)

// Service exposes the GORM handle together with pool health and shutdown.
type Service interface {
	Health() map[string]string
	Close() error
	GetDB() *gorm.DB
}

// Pool defaults when the config leaves them unset.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = time.Hour
)

type service struct {
	db      *gorm.DB
	log     *slog.Logger
	maxOpen int
}

// New opens a pooled PostgreSQL connection through GORM.
func New(cfg config.DB, log *slog.Logger) (Service, error) {
	const op = "database.New"

	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	maxOpen := orDefault(cfg.MaxOpenConns, defaultMaxOpenConns)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(orDefault(cfg.MaxIdleConns, defaultMaxIdleConns), maxOpen))
	sqlDB.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, defaultConnMaxLifetime))

	return &service{db: db, log: log, maxOpen: maxOpen}, nil
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health pings the pool and reports its statistics as strings for the
// /health endpoint. status is "down" when the ping fails.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Error("database health check failed", slog.Any("error", err))
		return map[string]string{"status": "down", "error": err.Error()}
	}

	st := sqlDB.Stats()
	health := map[string]string{
		"status":              "up",
		"message":             "It's healthy",
		"open_connections":    strconv.Itoa(st.OpenConnections),
		"max_open":            strconv.Itoa(s.maxOpen),
		"in_use":              strconv.Itoa(st.InUse),
		"idle":                strconv.Itoa(st.Idle),
		"wait_count":          strconv.FormatInt(st.WaitCount, 10),
		"wait_duration":       st.WaitDuration.String(),
		"max_idle_closed":     strconv.FormatInt(st.MaxIdleClosed, 10),
		"max_lifetime_closed": strconv.FormatInt(st.MaxLifetimeClosed, 10),
	}

	switch {
	case st.WaitCount > 1000:
		health["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	case st.OpenConnections*5 >= s.maxOpen*4:
		health["message"] = "The database is experiencing heavy load."
	}
	return health
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("database.Close: %w", err)
	}
	s.log.Info("closing database connection pool")
	return sqlDB.Close()
}
