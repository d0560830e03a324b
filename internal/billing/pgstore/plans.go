package pgstore

import (
	"context"

	"github.com/cinestream/billing/internal/billing"
	"github.com/cinestream/billing/internal/pg"
)

func (s *Store) ListActivePlans(ctx context.Context) ([]billing.Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price_cents, currency, quality, max_screens, allows_downloads, is_active, created_at
		FROM plans
		WHERE is_active
		ORDER BY price_cents ASC`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var plans []billing.Plan
	for rows.Next() {
		var p billing.Plan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price.Amount, &p.Price.Currency,
			&p.Quality, &p.MaxScreens, &p.AllowsDownloads, &p.IsActive, &p.CreatedAt,
		); err != nil {
			return nil, wrapErr(err)
		}
		plans = append(plans, p)
	}
	return plans, wrapErr(rows.Err())
}

func (s *Store) GetPlan(ctx context.Context, planID int64) (*billing.Plan, error) {
	var p billing.Plan
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, price_cents, currency, quality, max_screens, allows_downloads, is_active, created_at
		FROM plans
		WHERE id = $1 AND is_active`, planID).Scan(
		&p.ID, &p.Name, &p.Price.Amount, &p.Price.Currency,
		&p.Quality, &p.MaxScreens, &p.AllowsDownloads, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, wrapErr(err)
	}
	return &p, nil
}
