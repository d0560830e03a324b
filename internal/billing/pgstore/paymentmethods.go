package pgstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/cinestream/billing/internal/billing"
	"github.com/cinestream/billing/internal/pg"
)

const paymentMethodColumns = `
	id, user_id, method_type, card_last_four, card_brand,
	expiry_month, expiry_year, billing_name, is_default, is_active, created_at`

func (s *Store) AddPaymentMethod(ctx context.Context, pm *billing.PaymentMethod) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Demote before insert so there is no moment with two defaults.
	if pm.IsDefault {
		if _, err := tx.Exec(ctx, `
			UPDATE payment_methods SET is_default = FALSE
			WHERE user_id = $1 AND is_active`, pm.UserID); err != nil {
			return wrapErr(err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payment_methods (id, user_id, method_type, card_last_four, card_brand,
			expiry_month, expiry_year, billing_name, is_default, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		pm.ID, pm.UserID, pm.MethodType, pm.CardLastFour, pm.CardBrand,
		pm.ExpiryMonth, pm.ExpiryYear, pm.BillingName, pm.IsDefault, pm.IsActive, pm.CreatedAt,
	)
	if err != nil {
		return wrapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) GetPaymentMethod(ctx context.Context, userID, methodID uuid.UUID) (*billing.PaymentMethod, error) {
	var pm billing.PaymentMethod
	err := s.pool.QueryRow(ctx, `
		SELECT `+paymentMethodColumns+`
		FROM payment_methods
		WHERE id = $1 AND user_id = $2 AND is_active`, methodID, userID).Scan(
		&pm.ID, &pm.UserID, &pm.MethodType, &pm.CardLastFour, &pm.CardBrand,
		&pm.ExpiryMonth, &pm.ExpiryYear, &pm.BillingName, &pm.IsDefault, &pm.IsActive, &pm.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrPaymentMethodNotFound
		}
		return nil, wrapErr(err)
	}
	return &pm, nil
}

func (s *Store) SetDefaultPaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE payment_methods SET is_default = FALSE
		WHERE user_id = $1 AND is_active`, userID); err != nil {
		return wrapErr(err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE payment_methods SET is_default = TRUE
		WHERE id = $1 AND user_id = $2 AND is_active`, methodID, userID)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		// Rolling back also restores the demoted rows.
		return billing.ErrPaymentMethodNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) RemovePaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE payment_methods SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active`, methodID, userID)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrPaymentMethodNotFound
	}
	return nil
}

func (s *Store) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]billing.PaymentMethod, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+paymentMethodColumns+`
		FROM payment_methods
		WHERE user_id = $1 AND is_active
		ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var methods []billing.PaymentMethod
	for rows.Next() {
		var pm billing.PaymentMethod
		if err := rows.Scan(
			&pm.ID, &pm.UserID, &pm.MethodType, &pm.CardLastFour, &pm.CardBrand,
			&pm.ExpiryMonth, &pm.ExpiryYear, &pm.BillingName, &pm.IsDefault, &pm.IsActive, &pm.CreatedAt,
		); err != nil {
			return nil, wrapErr(err)
		}
		methods = append(methods, pm)
	}
	return methods, wrapErr(rows.Err())
}
