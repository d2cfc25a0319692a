package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
)

// PageSize is the number of todos per listing page.
const PageSize = 6

// MaxPage is the highest page FindFiltered will query; later pages are empty.
const MaxPage = 1 << 20

// TodoFilter scopes a listing. An empty OwnerID means every owner.
type TodoFilter struct {
	Query   string
	OwnerID string
}

// TodoChanges is the full set of mutable todo columns.
type TodoChanges struct {
	Title       string
	Description string
	Status      domain.Status
}

// TodoRepository defines the data operations on todos.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id string) (*domain.Todo, error)
	FindOwnerID(ctx context.Context, id string) (string, error)
	FindFiltered(ctx context.Context, filter TodoFilter, page int) ([]domain.TodoWithOwner, error)
	CountPages(ctx context.Context, filter TodoFilter) (int, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Stats(ctx context.Context, ownerID string) (domain.Stats, error)
	Update(ctx context.Context, id string, changes TodoChanges) (*domain.Todo, error)
	Delete(ctx context.Context, id string) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// PageCount returns ceil(matches / PageSize).
func PageCount(matches int64) int {
	if matches <= 0 {
		return 0
	}
	return int((matches + PageSize - 1) / PageSize)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	const op = "repository.Todo.Create"

	if todo.Status == "" {
		todo.Status = domain.StatusPending
	}
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *gormTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	const op = "repository.Todo.FindByID"

	if !validID(id) {
		return nil, ErrNotFound
	}

	var todos []domain.Todo
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(todos) == 0 {
		return nil, ErrNotFound
	}
	return &todos[0], nil
}

func (r *gormTodoRepository) FindOwnerID(ctx context.Context, id string) (string, error) {
	const op = "repository.Todo.FindOwnerID"

	if !validID(id) {
		return "", ErrNotFound
	}

	var owners []string
	err := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("id = ?", id).Limit(1).Pluck("user_id", &owners).Error
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(owners) == 0 {
		return "", ErrNotFound
	}
	return owners[0], nil
}

// scoped applies the search predicate and owner scope. ok is false when the
// owner id cannot match any row.
func scoped(q *gorm.DB, filter TodoFilter) (*gorm.DB, bool) {
	if filter.OwnerID != "" {
		if !validID(filter.OwnerID) {
			return q, false
		}
		q = q.Where("todos.user_id = ?", filter.OwnerID)
	}
	if filter.Query != "" {
		pattern := "%" + escapeLike(filter.Query) + "%"
		q = q.Where("(todos.title ILIKE ? OR todos.description ILIKE ? OR todos.status ILIKE ?)", pattern, pattern, pattern)
	}
	return q, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *gormTodoRepository) FindFiltered(ctx context.Context, filter TodoFilter, page int) ([]domain.TodoWithOwner, error) {
	const op = "repository.Todo.FindFiltered"

	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return []domain.TodoWithOwner{}, nil
	}

	q := r.db.WithContext(ctx).
		Table("todos").
		Select("todos.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON todos.user_id = users.id")

	q, ok := scoped(q, filter)
	if !ok {
		return []domain.TodoWithOwner{}, nil
	}

	todos := make([]domain.TodoWithOwner, 0, PageSize)
	err := q.Order("todos.created_at DESC").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Scan(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return todos, nil
}

func (r *gormTodoRepository) CountPages(ctx context.Context, filter TodoFilter) (int, error) {
	const op = "repository.Todo.CountPages"

	q, ok := scoped(r.db.WithContext(ctx).Model(&domain.Todo{}), filter)
	if !ok {
		return 0, nil
	}

	var matches int64
	if err := q.Count(&matches).Error; err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return PageCount(matches), nil
}

func (r *gormTodoRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	const op = "repository.Todo.CountByOwner"

	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", ownerID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// Stats runs the total, pending and completed counts concurrently.
// An empty ownerID counts every todo.
func (r *gormTodoRepository) Stats(ctx context.Context, ownerID string) (domain.Stats, error) {
	const op = "repository.Todo.Stats"

	var stats domain.Stats
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, status domain.Status) func() error {
		return func() error {
			q := r.db.WithContext(gctx).Model(&domain.Todo{})
			if ownerID != "" {
				q = q.Where("user_id = ?", ownerID)
			}
			if status != "" {
				q = q.Where("status = ?", string(status))
			}
			return q.Count(dst).Error
		}
	}

	g.Go(count(&stats.TotalTodos, ""))
	g.Go(count(&stats.PendingTodos, domain.StatusPending))
	g.Go(count(&stats.CompletedTodos, domain.StatusCompleted))

	if err := g.Wait(); err != nil {
		return domain.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// Update rewrites the mutable columns in a single UPDATE ... RETURNING statement.
func (r *gormTodoRepository) Update(ctx context.Context, id string, changes TodoChanges) (*domain.Todo, error) {
	const op = "repository.Todo.Update"

	if !validID(id) {
		return nil, ErrNotFound
	}

	var updated []domain.Todo
	result := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":       changes.Title,
			"description": changes.Description,
			"status":      string(changes.Status),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 || len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, id string) error {
	const op = "repository.Todo.Delete"

	if !validID(id) {
		return ErrNotFound
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Todo{})
	if result.Error != nil {
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
