package repository_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		matches int64
		want    int
	}{
		{0, 0},
		{1, 1},
		{6, 1},
		{7, 2},
		{13, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, repository.PageCount(tt.matches), "matches=%d", tt.matches)
	}
}

func TestFindOwnerID(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice", "alice@example.com", domain.RoleUser)
	todo := seedTodo(t, db, alice, "Buy milk", domain.StatusPending, time.Now())

	owner, err := repo.FindOwnerID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, owner)

	_, err = repo.FindOwnerID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.FindOwnerID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateDefaultsAndFindByID(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice", "alice@example.com", domain.RoleUser)
	todo := &domain.Todo{Title: "Buy milk", UserID: alice.ID}
	require.NoError(t, repo.Create(ctx, todo))
	require.NotEmpty(t, todo.ID)

	got, err := repo.FindByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, alice.ID, got.UserID)
}

func TestCountPagesAndAdminFilter(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db, "One", "one@example.com", domain.RoleUser)
	u2 := seedUser(t, db, "Two", "two@example.com", domain.RoleUser)

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		seedTodo(t, db, u2, fmt.Sprintf("u2 task %02d", i), domain.StatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	seedTodo(t, db, u1, "u1 task", domain.StatusPending, base)

	pages, err := repo.CountPages(ctx, repository.TodoFilter{OwnerID: u2.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	first, err := repo.FindFiltered(ctx, repository.TodoFilter{OwnerID: u2.ID}, 1)
	require.NoError(t, err)
	require.Len(t, first, repository.PageSize)
	for i, todo := range first {
		assert.Equal(t, u2.ID, todo.UserID)
		assert.Equal(t, "Two", todo.UserName)
		assert.Equal(t, "two@example.com", todo.UserEmail)
		if i > 0 {
			assert.True(t, !todo.CreatedAt.After(first[i-1].CreatedAt), "rows must be ordered by created_at desc")
		}
	}
	assert.Equal(t, "u2 task 12", first[0].Title)

	last, err := repo.FindFiltered(ctx, repository.TodoFilter{OwnerID: u2.ID}, 3)
	require.NoError(t, err)
	assert.Len(t, last, 1)

	all, err := repo.CountPages(ctx, repository.TodoFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all)

	none, err := repo.FindFiltered(ctx, repository.TodoFilter{OwnerID: "bogus"}, 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	for _, page := range []int{repository.MaxPage, repository.MaxPage + 1, math.MaxInt} {
		beyond, err := repo.FindFiltered(ctx, repository.TodoFilter{}, page)
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, beyond, "page %d", page)
	}
}

func TestSearchIsCaseInsensitiveAndLiteral(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "Alice", "alice@example.com", domain.RoleUser)
	now := time.Now()
	seedTodo(t, db, u, "Deploy to AWS", domain.StatusPending, now)
	seedTodo(t, db, u, "Write docs", domain.StatusCompleted, now.Add(time.Second))
	seedTodo(t, db, u, "100% coverage", domain.StatusPending, now.Add(2*time.Second))

	byTitle, err := repo.FindFiltered(ctx, repository.TodoFilter{Query: "aws"}, 1)
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Deploy to AWS", byTitle[0].Title)

	byStatus, err := repo.FindFiltered(ctx, repository.TodoFilter{Query: "COMPLETED"}, 1)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Write docs", byStatus[0].Title)

	literal, err := repo.FindFiltered(ctx, repository.TodoFilter{Query: "%"}, 1)
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100% coverage", literal[0].Title)
}

func TestUpdateReturnsRowOrNotFound(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "Alice", "alice@example.com", domain.RoleUser)
	todo := seedTodo(t, db, u, "Old", domain.StatusPending, time.Now())

	updated, err := repo.Update(ctx, todo.ID, repository.TodoChanges{Title: "New", Description: "desc", Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, todo.ID, updated.ID)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, u.ID, updated.UserID)

	_, err = repo.Update(ctx, "00000000-0000-0000-0000-000000000000", repository.TodoChanges{Title: "x", Status: domain.StatusPending})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteTwice(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "Alice", "alice@example.com", domain.RoleUser)
	todo := seedTodo(t, db, u, "Temp", domain.StatusPending, time.Now())

	require.NoError(t, repo.Delete(ctx, todo.ID))
	assert.ErrorIs(t, repo.Delete(ctx, todo.ID), repository.ErrNotFound)
}

func TestStatsScope(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGormTodoRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db, "One", "one@example.com", domain.RoleUser)
	u2 := seedUser(t, db, "Two", "two@example.com", domain.RoleUser)
	now := time.Now()
	seedTodo(t, db, u1, "a", domain.StatusPending, now)
	seedTodo(t, db, u1, "b", domain.StatusCompleted, now)
	seedTodo(t, db, u2, "c", domain.StatusPending, now)

	own, err := repo.Stats(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalTodos: 2, PendingTodos: 1, CompletedTodos: 1}, own)

	all, err := repo.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalTodos: 3, PendingTodos: 2, CompletedTodos: 1}, all)

	n, err := repo.CountByOwner(ctx, u2.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
