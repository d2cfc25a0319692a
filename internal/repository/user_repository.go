package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
)

const defaultOAuthName = "GitHub User"

// UserRepository defines the data operations on users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindOrCreateOAuthUser(ctx context.Context, name, email string) (*domain.User, error)
	ListSummaries(ctx context.Context) ([]domain.UserSummary, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.User.Create"

	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "repository.User.FindByEmail"

	var users []domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

// FindOrCreateOAuthUser links an external account by email, creating a
// password-less user with role "user" on first sign-in.
func (r *gormUserRepository) FindOrCreateOAuthUser(ctx context.Context, name, email string) (*domain.User, error) {
	const op = "repository.User.FindOrCreateOAuthUser"

	user, err := r.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if name == "" {
		name = defaultOAuthName
	}
	user = &domain.User{Name: name, Email: email, Role: domain.RoleUser}
	if err := r.Create(ctx, user); err != nil {
		// lost a race with a concurrent first sign-in
		if errors.Is(err, ErrDuplicateEmail) {
			return r.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *gormUserRepository) ListSummaries(ctx context.Context) ([]domain.UserSummary, error) {
	const op = "repository.User.ListSummaries"

	users := make([]domain.UserSummary, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("id", "name", "email").
		Order("name ASC").
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}
