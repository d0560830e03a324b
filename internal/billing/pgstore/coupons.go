package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cinestream/billing/internal/billing"
	"github.com/cinestream/billing/internal/pg"
)

func (s *Store) GetCouponByCode(ctx context.Context, code string) (*billing.Coupon, error) {
	var c billing.Coupon
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, discount_type, discount_value, valid_until, max_uses, current_uses, is_active
		FROM coupons
		WHERE code = $1`, billing.NormalizeCouponCode(code)).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue,
		&c.ValidUntil, &c.MaxUses, &c.CurrentUses, &c.IsActive,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrCouponInvalid
		}
		return nil, wrapErr(err)
	}
	return &c, nil
}

// redeemCoupon increments the usage counter inside tx, guarded by activity,
// expiry and the usage cap. Zero affected rows means the coupon lost the
// race or expired between validation and redemption.
func redeemCoupon(ctx context.Context, tx pgx.Tx, couponID int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE coupons
		SET current_uses = current_uses + 1
		WHERE id = $1
		  AND is_active
		  AND (valid_until IS NULL OR valid_until >= now())
		  AND (max_uses IS NULL OR current_uses < max_uses)`, couponID)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrCouponInvalid
	}
	return nil
}
