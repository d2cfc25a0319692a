package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Tomlord1122/portfolio-backend/internal/cache"
	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/ratelimit"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

// MaxTodosPerUser is the create quota for non-admin users.
const MaxTodosPerUser = 100

// --- Inputs and outputs ---

// TodoInput is the raw, unvalidated payload of a create or update.
type TodoInput struct {
	Title       string
	Description string
	Status      string
}

// InputFunc decodes the transport payload. It is called only once the caller
// has passed the rate, auth and ownership gates. It may return
// validation.Errors for field-level problems.
type InputFunc func() (TodoInput, error)

// Input wraps an already-decoded payload.
func Input(in TodoInput) InputFunc {
	return func() (TodoInput, error) { return in, nil }
}

// ListParams are the listing inputs; Page is 1-based.
type ListParams struct {
	Query  string
	Page   int
	UserID string // honored for admins only
}

// TodoPage is one page of a listing.
type TodoPage struct {
	Data       []domain.TodoWithOwner `json:"data"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"totalPages"`
}

// --- Service interface ---

// TodoService applies rate limit, authentication, authorization and
// validation, in that order, before touching the store.
type TodoService interface {
	ListTodos(ctx context.Context, c Caller, p ListParams) (*TodoPage, error)
	GetTodo(ctx context.Context, c Caller, id string) (*domain.Todo, error)
	CreateTodo(ctx context.Context, c Caller, input InputFunc) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, c Caller, id string, input InputFunc) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, c Caller, id string) error
	Stats(ctx context.Context, c Caller) (*domain.Stats, error)
}

// --- Implementation ---

type todoService struct {
	repo    repository.TodoRepository
	limiter ratelimit.Limiter
	cache   cache.ListCache
	log     *slog.Logger
}

// NewTodoService creates a new todo service
func NewTodoService(repo repository.TodoRepository, limiter ratelimit.Limiter, lc cache.ListCache, log *slog.Logger) TodoService {
	if lc == nil {
		lc = cache.Noop{}
	}
	return &todoService{
		repo:    repo,
		limiter: limiter,
		cache:   lc,
		log:     log.With(slog.String("component", "todo_service")),
	}
}

// fail passes *Error through and turns anything else into a logged data access error.
func (s *todoService) fail(op string, err error) error {
	if se, ok := AsError(err); ok {
		return se
	}
	s.log.Error("data access failed", slog.String("op", op), slog.Any("error", err))
	return errDataAccess(op, err)
}

// gate runs the rate and authentication checks shared by every operation.
func (s *todoService) gate(ctx context.Context, c Caller) error {
	if err := checkRate(ctx, s.limiter, c, ratelimit.API, msgTooMany); err != nil {
		return err
	}
	return requireAuthenticated(c.Identity)
}

func (s *todoService) ListTodos(ctx context.Context, c Caller, p ListParams) (*TodoPage, error) {
	const op = "Fetch Todos"

	if err := s.gate(ctx, c); err != nil {
		return nil, err
	}

	page := min(max(p.Page, 1), repository.MaxPage)
	filter := repository.TodoFilter{Query: p.Query, OwnerID: listScope(c.Identity, p.UserID)}

	key := listKey(filter, page)
	version := s.cache.Version(ctx)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached TodoPage
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	result := &TodoPage{Page: page}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		todos, err := s.repo.FindFiltered(gctx, filter, page)
		result.Data = todos
		return err
	})
	g.Go(func() error {
		pages, err := s.repo.CountPages(gctx, filter)
		result.TotalPages = pages
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(op, err)
	}

	if raw, err := json.Marshal(result); err == nil {
		s.cache.Set(ctx, version, key, raw)
	}
	return result, nil
}

func listKey(f repository.TodoFilter, page int) string {
	owner := f.OwnerID
	if owner == "" {
		owner = "*"
	}
	return owner + "|" + strconv.Itoa(page) + "|" + f.Query
}

func (s *todoService) GetTodo(ctx context.Context, c Caller, id string) (*domain.Todo, error) {
	const op = "Fetch Todo"

	if err := s.gate(ctx, c); err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(ctx, s.repo.FindOwnerID, id, c.Identity, "You can only view your own todos."); err != nil {
		return nil, s.fail(op, err)
	}

	todo, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound()
	}
	if err != nil {
		return nil, s.fail(op, err)
	}
	return todo, nil
}

func (s *todoService) CreateTodo(ctx context.Context, c Caller, input InputFunc) (*domain.Todo, error) {
	const op = "Create Todo"

	// 1. rate + auth
	if err := s.gate(ctx, c); err != nil {
		return nil, err
	}

	// 2. validate
	raw, err := input()
	if err != nil {
		return nil, inputError(err)
	}
	valid, err := validation.ValidateCreateTodo(raw.Title, raw.Description)
	if err != nil {
		return nil, inputError(err)
	}

	// 3. quota
	if !c.Identity.IsAdmin() {
		n, err := s.repo.CountByOwner(ctx, c.Identity.UserID)
		if err != nil {
			return nil, s.fail(op, err)
		}
		if n >= MaxTodosPerUser {
			return nil, &Error{Kind: KindQuotaExceeded, Message: msgQuota}
		}
	}

	// 4. insert
	todo := &domain.Todo{
		Title:       valid.Title,
		Description: valid.Description,
		Status:      domain.StatusPending,
		UserID:      c.Identity.UserID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, s.fail(op, err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("todo created", slog.String("todo_id", todo.ID), slog.String("user_id", todo.UserID))
	return todo, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, c Caller, id string, input InputFunc) (*domain.Todo, error) {
	const op = "Update Todo"

	if err := s.gate(ctx, c); err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(ctx, s.repo.FindOwnerID, id, c.Identity, "You can only modify your own todos."); err != nil {
		return nil, s.fail(op, err)
	}

	raw, err := input()
	if err != nil {
		return nil, inputError(err)
	}
	valid, err := validation.ValidateUpdateTodo(raw.Title, raw.Description, raw.Status)
	if err != nil {
		return nil, inputError(err)
	}

	todo, err := s.repo.Update(ctx, id, repository.TodoChanges{
		Title:       valid.Title,
		Description: valid.Description,
		Status:      valid.Status,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound()
	}
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("todo updated", slog.String("todo_id", id), slog.String("by", c.Identity.UserID))
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, c Caller, id string) error {
	const op = "Delete Todo"

	if err := s.gate(ctx, c); err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(ctx, s.repo.FindOwnerID, id, c.Identity, "You can only delete your own todos."); err != nil {
		return s.fail(op, err)
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return errNotFound()
	}
	if err != nil {
		return s.fail(op, err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("todo deleted", slog.String("todo_id", id), slog.String("by", c.Identity.UserID))
	return nil
}

func (s *todoService) Stats(ctx context.Context, c Caller) (*domain.Stats, error) {
	const op = "Fetch Stats"

	if err := s.gate(ctx, c); err != nil {
		return nil, err
	}

	stats, err := s.repo.Stats(ctx, listScope(c.Identity, ""))
	if err != nil {
		return nil, s.fail(op, err)
	}
	return &stats, nil
}
