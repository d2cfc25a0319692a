package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Name: "John", Email: "john@test.com", Password: "hash"}))
	err := repo.Create(ctx, &domain.User{Name: "Johnny", Email: "john@test.com", Password: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	got, err := repo.FindByEmail(ctx, "john@test.com")
	require.NoError(t, err)
	assert.Equal(t, "John", got.Name)
	assert.Equal(t, domain.RoleUser, got.Role)

	_, err = repo.FindByEmail(ctx, "nobody@test.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindOrCreateOAuthUser(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	first, err := repo.FindOrCreateOAuthUser(ctx, "", "octo@github.com")
	require.NoError(t, err)
	assert.Equal(t, "GitHub User", first.Name)
	assert.Equal(t, "", first.Password)
	assert.Equal(t, domain.RoleUser, first.Role)

	again, err := repo.FindOrCreateOAuthUser(ctx, "Octo Cat", "octo@github.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestListSummariesOrderedByName(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "Zed", "zed@example.com", domain.RoleUser)
	seedUser(t, db, "Amy", "amy@example.com", domain.RoleAdmin)

	users, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Amy", users[0].Name)
	assert.Equal(t, "amy@example.com", users[0].Email)
	assert.NotEmpty(t, users[0].ID)
	assert.Equal(t, "Zed", users[1].Name)
}
