package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/identity"
	"github.com/Tomlord1122/portfolio-backend/internal/ratelimit"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTodoRepo is an in-memory TodoRepository that records calls.
type stubTodoRepo struct {
	mu      sync.Mutex
	todos   map[string]*domain.Todo
	nextID  int
	err     error
	counts  map[string]int64
	filters []repository.TodoFilter

	ownerLookups int
	findFiltered int
	lastPage     int

	// afterFind runs once, outside the lock, after the next FindFiltered has
	// collected its rows.
	afterFind func()
}

func newStubTodoRepo(todos ...*domain.Todo) *stubTodoRepo {
	r := &stubTodoRepo{todos: map[string]*domain.Todo{}, counts: map[string]int64{}}
	for _, t := range todos {
		r.todos[t.ID] = t
	}
	return r
}

func (r *stubTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	todo.ID = "new-" + strconv.Itoa(r.nextID)
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	cp := *todo
	r.todos[todo.ID] = &cp
	return nil
}

func (r *stubTodoRepo) FindByID(_ context.Context, id string) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTodoRepo) FindOwnerID(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownerLookups++
	if r.err != nil {
		return "", r.err
	}
	t, ok := r.todos[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return t.UserID, nil
}

func (r *stubTodoRepo) FindFiltered(_ context.Context, f repository.TodoFilter, page int) ([]domain.TodoWithOwner, error) {
	r.mu.Lock()
	r.findFiltered++
	r.lastPage = page
	r.filters = append(r.filters, f)
	if r.err != nil {
		r.mu.Unlock()
		return nil, r.err
	}
	out := []domain.TodoWithOwner{}
	for _, t := range r.todos {
		if f.OwnerID == "" || t.UserID == f.OwnerID {
			out = append(out, domain.TodoWithOwner{Todo: *t})
		}
	}
	hook := r.afterFind
	r.afterFind = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *stubTodoRepo) CountPages(_ context.Context, f repository.TodoFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, t := range r.todos {
		if f.OwnerID == "" || t.UserID == f.OwnerID {
			n++
		}
	}
	return repository.PageCount(n), nil
}

func (r *stubTodoRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if n, ok := r.counts[ownerID]; ok {
		return n, nil
	}
	var n int64
	for _, t := range r.todos {
		if t.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *stubTodoRepo) Stats(_ context.Context, ownerID string) (domain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Stats{}, r.err
	}
	var s domain.Stats
	for _, t := range r.todos {
		if ownerID != "" && t.UserID != ownerID {
			continue
		}
		s.TotalTodos++
		if t.Status == domain.StatusCompleted {
			s.CompletedTodos++
		} else {
			s.PendingTodos++
		}
	}
	return s, nil
}

func (r *stubTodoRepo) Update(_ context.Context, id string, ch repository.TodoChanges) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Title, t.Description, t.Status = ch.Title, ch.Description, ch.Status
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (r *stubTodoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.todos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

// stubLimiter allows everything unless deny is set.
type stubLimiter struct {
	deny bool
	keys []string
}

func (l *stubLimiter) Allow(_ context.Context, key string, p ratelimit.Policy) ratelimit.Decision {
	l.keys = append(l.keys, p.Key(key))
	if l.deny {
		return ratelimit.Decision{Allowed: false, ResetAt: time.Now().Add(p.Window)}
	}
	return ratelimit.Decision{Allowed: true, Remaining: p.Limit - 1, ResetAt: time.Now().Add(p.Window)}
}

func (l *stubLimiter) Close() error { return nil }

type stubUserRepo struct {
	created []*domain.User
	err     error
	users   []domain.UserSummary
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.err != nil {
		return r.err
	}
	u.ID = "user-1"
	r.created = append(r.created, u)
	return nil
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindOrCreateOAuthUser(context.Context, string, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) ListSummaries(context.Context) ([]domain.UserSummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.users, nil
}

type stubAuth struct {
	gotEmail, gotPassword string
	err                   error
}

func (a *stubAuth) SignIn(_ context.Context, email, password string) (*identity.Session, error) {
	a.gotEmail, a.gotPassword = email, password
	if a.err != nil {
		return nil, a.err
	}
	return &identity.Session{Token: "token", Identity: domain.Identity{UserID: "user-1", Role: domain.RoleUser}}, nil
}
