// Package ratelimit provides fixed-window request rate limiting for the API.
//
// The limiter counts requests per key within a rolling window; the counter
// lives in a Store so multiple API replicas share one budget.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidLimit    = errors.New("ratelimit: limit must be positive")
	ErrInvalidInterval = errors.New("ratelimit: interval must be positive")
	ErrStoreRequired   = errors.New("ratelimit: store is required")
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the counter backend shared by API replicas.
type Store interface {
	// IncrementAndGet atomically increments the counter for key, setting the
	// window TTL on first use, and returns the new value with remaining TTL.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (current int64, ttl time.Duration, err error)
}

// FixedWindow allows up to limit requests per interval for each key.
type FixedWindow struct {
	store    Store
	limit    int
	interval time.Duration
}

// NewFixedWindow creates a fixed-window limiter.
func NewFixedWindow(store Store, limit int, interval time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return &FixedWindow{store: store, limit: limit, interval: interval}, nil
}

// Allow consumes one slot for key and reports whether the request fits the
// current window.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	current, ttl, err := fw.store.IncrementAndGet(ctx, key, fw.interval)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = fw.interval
	}

	remaining := int64(fw.limit) - current
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   current <= int64(fw.limit),
		Limit:     fw.limit,
		Remaining: int(remaining),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}
