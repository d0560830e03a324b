package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cinestream/billing/internal/billing"
	"github.com/cinestream/billing/internal/pg"
)

const subscriptionColumns = `
	id, user_id, plan_id, payment_method_id, coupon_id,
	status, auto_renew, started_at, period_end, canceled_at, created_at`

func scanSubscription(row pgx.Row) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.PaymentMethodID, &sub.CouponID,
		&sub.Status, &sub.AutoRenew, &sub.StartedAt, &sub.PeriodEnd, &sub.CanceledAt, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *billing.Subscription, event *billing.BillingEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if sub.CouponID != nil {
		if err := redeemCoupon(ctx, tx, *sub.CouponID); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_id, payment_method_id, coupon_id,
			status, auto_renew, started_at, period_end, canceled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.UserID, sub.PlanID, sub.PaymentMethodID, sub.CouponID,
		sub.Status, sub.AutoRenew, sub.StartedAt, sub.PeriodEnd, sub.CanceledAt, sub.CreatedAt,
	)
	if err != nil {
		// The partial unique index on (user_id) WHERE status = 'active' is
		// the authority on the single-active-subscription invariant.
		if pg.IsDuplicateKeyError(err) {
			return billing.ErrAlreadySubscribed
		}
		if pg.IsForeignKeyViolationError(err) {
			return billing.ErrPlanNotFound
		}
		return wrapErr(err)
	}

	if event != nil {
		if err := insertBillingEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *billing.Subscription) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = $1, auto_renew = $2, canceled_at = $3
		WHERE id = $4 AND user_id = $5`,
		sub.Status, sub.AutoRenew, sub.CanceledAt, sub.ID, sub.UserID,
	)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrSubscriptionNotFound
	}
	return nil
}

func (s *Store) ActiveSubscription(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	sub, err := scanSubscription(s.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(err)
	}
	return sub, nil
}

func (s *Store) GetSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*billing.Subscription, error) {
	sub, err := scanSubscription(s.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1 AND user_id = $2`, subscriptionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, wrapErr(err)
	}
	return sub, nil
}

func (s *Store) DueForExpiry(ctx context.Context, now time.Time) ([]billing.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE status = 'active' AND NOT auto_renew AND period_end <= $1
		ORDER BY period_end ASC`, now)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var due []billing.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		due = append(due, *sub)
	}
	return due, wrapErr(rows.Err())
}
