package service

import (
	"context"
	"errors"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/ratelimit"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
)

// Caller is the already-resolved origin of a request.
type Caller struct {
	Identity domain.Identity
	ClientIP string
}

func (c Caller) rateKey() string {
	if c.ClientIP == "" {
		return "unknown"
	}
	return c.ClientIP
}

func requireAuthenticated(id domain.Identity) error {
	if !id.Authenticated() {
		return errUnauthenticated()
	}
	return nil
}

func requireAdmin(id domain.Identity) error {
	if !id.IsAdmin() {
		return errForbidden(msgAdminOnly)
	}
	return nil
}

// ownerLookup returns the owner of a todo or repository.ErrNotFound.
type ownerLookup func(ctx context.Context, todoID string) (string, error)

// requireOwnerOrAdmin lets admins through without a lookup. For everyone else
// a missing todo is reported before a foreign one.
func requireOwnerOrAdmin(ctx context.Context, lookup ownerLookup, todoID string, id domain.Identity, denied string) error {
	if id.IsAdmin() {
		return nil
	}
	owner, err := lookup(ctx, todoID)
	if errors.Is(err, repository.ErrNotFound) {
		return errNotFound()
	}
	if err != nil {
		return err
	}
	if owner != id.UserID {
		return errForbidden(denied)
	}
	return nil
}

// listScope returns the owner id a listing is restricted to. Non-admins only
// ever see their own rows; admins see filterUserID, or everything when empty.
func listScope(id domain.Identity, filterUserID string) string {
	if id.IsAdmin() {
		return filterUserID
	}
	return id.UserID
}

func checkRate(ctx context.Context, limiter ratelimit.Limiter, c Caller, p ratelimit.Policy, msg string) error {
	d := limiter.Allow(ctx, c.rateKey(), p)
	if !d.Allowed {
		return errRateLimited(msg, d.ResetAt)
	}
	return nil
}
