package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds how long a cached list page may be served.
const DefaultTTL = 30 * time.Second

// ListCache stores encoded list pages. Invalidate drops every page at once by
// moving to a new generation.
//
// Readers take Version before loading a page from the store and pass it to
// Set, so a page loaded before an Invalidate is never stored after it.
type ListCache interface {
	// Version returns the current generation, or a negative value when it
	// cannot be determined. Set ignores negative versions.
	Version(ctx context.Context) int64
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, version int64, key string, value []byte)
	Invalidate(ctx context.Context)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Version(context.Context) int64 { return 0 }
func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, int64, string, []byte) {}
func (Noop) Invalidate(context.Context) {}
