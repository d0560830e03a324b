// Package pgstore implements billing.Store on PostgreSQL.
//
// Invariants live in the schema: a partial unique index admits at most one
// active subscription per user, and coupon redemption is a guarded UPDATE so
// concurrent redemptions of a capped coupon admit exactly one winner.
package pgstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinestream/billing/internal/billing"
	"github.com/cinestream/billing/internal/pg"
)

// Store is the production billing.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ billing.Store = (*Store)(nil)

// wrapErr classifies a storage error: transient failures become retryable
// ErrStorageUnavailable, everything else passes through for the caller to
// map to a domain error.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if pg.IsTransientError(err) {
		return errors.Join(billing.ErrStorageUnavailable, err)
	}
	return err
}
