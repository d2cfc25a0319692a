package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// AuthErrorType classifies why a credential or token was rejected.
type AuthErrorType string

const (
	CredentialsSignin AuthErrorType = "CredentialsSignin"
	CallbackError     AuthErrorType = "CallbackRouteError"
)

// AuthError is a sign-in failure the caller may present to the user.
// Any other error from SignIn is a fault in the identity layer itself.
type AuthError struct {
	Type AuthErrorType
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}
	return string(e.Type)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Session is the outcome of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  domain.Identity
}

// Users is the part of the user store the provider needs.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindOrCreateOAuthUser(ctx context.Context, name, email string) (*domain.User, error)
}

// Provider signs users in and resolves request identities.
type Provider struct {
	users  Users
	secret []byte
	ttl    time.Duration
}

// NewProvider creates a provider that signs HS256 tokens with secret, valid for ttl.
func NewProvider(users Users, secret string, ttl time.Duration) *Provider {
	return &Provider{users: users, secret: []byte(secret), ttl: ttl}
}

// SignIn checks the credentials and issues a session token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "identity.Provider.SignIn"

	user, err := p.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &AuthError{Type: CredentialsSignin}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !CheckPassword(user.Password, password) {
		return nil, &AuthError{Type: CredentialsSignin}
	}
	return p.issue(user)
}

// SignInOAuth links an externally verified account by email and issues a session token.
func (p *Provider) SignInOAuth(ctx context.Context, name, email string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &AuthError{Type: CallbackError, Err: errors.New("oauth profile without email")}
	}
	user, err := p.users.FindOrCreateOAuthUser(ctx, name, email)
	if err != nil {
		return nil, &AuthError{Type: CallbackError, Err: err}
	}
	return p.issue(user)
}

func (p *Provider) issue(user *domain.User) (*Session, error) {
	id := domain.Identity{UserID: user.ID, Role: user.Role}
	token, expires, err := IssueToken(id, p.secret, p.ttl)
	if err != nil {
		return nil, &AuthError{Type: CallbackError, Err: err}
	}
	return &Session{Token: token, ExpiresAt: expires, Identity: id}, nil
}

// Resolve returns the identity carried by the bearer header or the session
// cookie. Missing or invalid tokens yield the anonymous identity.
func (p *Provider) Resolve(r *http.Request) domain.Identity {
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return domain.Identity{}
	}

	claims, err := ParseToken(token, p.secret)
	if err != nil {
		return domain.Identity{}
	}
	return claims.Identity()
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
