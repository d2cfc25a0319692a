package ratelimit

import (
	"context"
	"time"
)

// Policy is a fixed-window limit applied to a key namespace.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
	Prefix string
}

var (
	// Login guards credential checks, keyed by client IP.
	Login = Policy{Name: "login", Limit: 5, Window: 15 * time.Minute}
	// API guards every todo/user operation, keyed by "api:<ip>".
	API = Policy{Name: "api", Limit: 60, Window: time.Minute, Prefix: "api:"}
)

// Key namespaces key with the policy prefix.
func (p Policy) Key(key string) string {
	return p.Prefix + key
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, p Policy) Decision
	Close() error
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
