package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/identity"
	"github.com/Tomlord1122/portfolio-backend/internal/ratelimit"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

// Authenticator signs a user in with email and password.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult reports registration and sign-in separately. Session is nil
// and Message is set when the account was created but sign-in failed.
type RegisterResult struct {
	User    *domain.User
	Session *identity.Session
	Message string
}

// UserService handles registration, login and the admin user list.
type UserService interface {
	Register(ctx context.Context, c Caller, in RegisterInput) (*RegisterResult, error)
	// Authenticate returns identity errors unchanged so callers can tell an
	// *identity.AuthError from a fault.
	Authenticate(ctx context.Context, c Caller, email, password string) (*identity.Session, error)
	ListUsers(ctx context.Context, c Caller) ([]domain.UserSummary, error)
}

type userService struct {
	users   repository.UserRepository
	auth    Authenticator
	limiter ratelimit.Limiter
	log     *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, auth Authenticator, limiter ratelimit.Limiter, log *slog.Logger) UserService {
	return &userService{
		users:   users,
		auth:    auth,
		limiter: limiter,
		log:     log.With(slog.String("component", "user_service")),
	}
}

func (s *userService) Register(ctx context.Context, c Caller, in RegisterInput) (*RegisterResult, error) {
	const op = "register"

	if err := checkRate(ctx, s.limiter, c, ratelimit.API, msgTooMany); err != nil {
		return nil, err
	}

	valid, err := validation.ValidateRegister(in.Name, in.Email, in.Password)
	if err != nil {
		return nil, inputError(err)
	}

	hash, err := identity.HashPassword(valid.Password)
	if err != nil {
		s.log.Error("hash password", slog.Any("error", err))
		return nil, errDataAccess(op, err)
	}

	user := &domain.User{
		Name:     valid.Name,
		Email:    valid.Email,
		Password: hash,
		Role:     domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, &Error{Kind: KindConflict, Message: msgEmailTaken, Err: err}
		}
		s.log.Error("data access failed", slog.String("op", op), slog.Any("error", err))
		return nil, errDataAccess(op, err)
	}
	s.log.Info("user registered", slog.String("user_id", user.ID))

	sess, err := s.auth.SignIn(ctx, valid.Email, valid.Password)
	if err != nil {
		if identity.IsAuthError(err) {
			s.log.Warn("auto sign-in after registration failed", slog.String("user_id", user.ID), slog.Any("error", err))
			return &RegisterResult{User: user, Message: msgAutoLoginFailed}, nil
		}
		return nil, err
	}
	return &RegisterResult{User: user, Session: sess}, nil
}

func (s *userService) Authenticate(ctx context.Context, c Caller, email, password string) (*identity.Session, error) {
	if err := checkRate(ctx, s.limiter, c, ratelimit.Login, msgTooManyLogins); err != nil {
		s.log.Warn("login rate limited", slog.String("ip", c.ClientIP))
		return nil, err
	}
	return s.auth.SignIn(ctx, email, password)
}

func (s *userService) ListUsers(ctx context.Context, c Caller) ([]domain.UserSummary, error) {
	const op = "Fetch Users"

	if err := checkRate(ctx, s.limiter, c, ratelimit.API, msgTooMany); err != nil {
		return nil, err
	}
	if err := requireAuthenticated(c.Identity); err != nil {
		return nil, err
	}
	if err := requireAdmin(c.Identity); err != nil {
		return nil, err
	}

	users, err := s.users.ListSummaries(ctx)
	if err != nil {
		s.log.Error("data access failed", slog.String("op", op), slog.Any("error", err))
		return nil, errDataAccess(op, err)
	}
	return users, nil
}
