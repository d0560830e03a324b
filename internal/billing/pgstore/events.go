package pgstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cinestream/billing/internal/billing"
)

func insertBillingEvent(ctx context.Context, tx pgx.Tx, event *billing.BillingEvent) error {
	_, err := tx.Exec(ctx, insertEventSQL, eventArgs(event)...)
	return wrapErr(err)
}

const insertEventSQL = `
	INSERT INTO billing_events (id, user_id, subscription_id, payment_method_id,
		amount_cents, currency, status, transaction_id, description, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func eventArgs(event *billing.BillingEvent) []any {
	return []any{
		event.ID, event.UserID, event.SubscriptionID, event.PaymentMethodID,
		event.Amount.Amount, event.Amount.Currency, event.Status,
		event.TransactionID, event.Description, event.OccurredAt,
	}
}

func (s *Store) RecordBillingEvent(ctx context.Context, event *billing.BillingEvent) error {
	_, err := s.pool.Exec(ctx, insertEventSQL, eventArgs(event)...)
	return wrapErr(err)
}

func (s *Store) ListBillingEvents(ctx context.Context, userID uuid.UUID, limit int) ([]billing.BillingEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT be.id, be.user_id, be.subscription_id, be.payment_method_id,
			be.amount_cents, be.currency, be.status, be.transaction_id,
			be.description, be.occurred_at,
			COALESCE(pm.card_last_four, ''), COALESCE(pm.card_brand, '')
		FROM billing_events be
		LEFT JOIN payment_methods pm ON pm.id = be.payment_method_id
		WHERE be.user_id = $1
		ORDER BY be.occurred_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var events []billing.BillingEvent
	for rows.Next() {
		var ev billing.BillingEvent
		if err := rows.Scan(
			&ev.ID, &ev.UserID, &ev.SubscriptionID, &ev.PaymentMethodID,
			&ev.Amount.Amount, &ev.Amount.Currency, &ev.Status, &ev.TransactionID,
			&ev.Description, &ev.OccurredAt,
			&ev.CardLastFour, &ev.CardBrand,
		); err != nil {
			return nil, wrapErr(err)
		}
		events = append(events, ev)
	}
	return events, wrapErr(rows.Err())
}
