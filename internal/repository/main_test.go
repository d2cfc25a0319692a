package repository_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/Tomlord1122/portfolio-backend/internal/config"
	"github.com/Tomlord1122/portfolio-backend/internal/database"
	"github.com/Tomlord1122/portfolio-backend/internal/domain"
)

var (
	pgOnce      sync.Once
	pgContainer *tcpostgres.PostgresContainer
	pgDB        *gorm.DB
	pgErr       error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = testcontainers.TerminateContainer(pgContainer)
	}
	os.Exit(code)
}

func startPostgres() (*gorm.DB, error) {
	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("portfolio"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}
	pgContainer = ctr

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := database.New(config.DB{URL: dsn}, log)
	if err != nil {
		return nil, err
	}
	migrator, err := database.NewMigrator(svc.GetDB(), log)
	if err != nil {
		return nil, err
	}
	if err := migrator.Up(ctx); err != nil {
		return nil, err
	}
	return svc.GetDB(), nil
}

// testDB returns a migrated, emptied database shared by every test in the package.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() { pgDB, pgErr = startPostgres() })
	require.NoError(t, pgErr)
	require.NoError(t, pgDB.Exec("TRUNCATE todos, users CASCADE").Error)
	return pgDB
}

func seedUser(t *testing.T, db *gorm.DB, name, email string, role domain.Role) domain.User {
	t.Helper()
	u := domain.User{Name: name, Email: email, Password: "hash", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedTodo(t *testing.T, db *gorm.DB, owner domain.User, title string, status domain.Status, at time.Time) domain.Todo {
	t.Helper()
	todo := domain.Todo{Title: title, Status: status, UserID: owner.ID, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, db.Create(&todo).Error)
	return todo
}
