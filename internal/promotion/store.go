package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/pos-api/internal/promo"
)

// DBPool is the subset of pgxpool.Pool the store needs.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads promotion snapshots from Postgres and converts the stored
// eligibility arrays into engine scopes.
type Store struct {
	Pool DBPool
}

const promotionColumns = `
	id, name, kind, value, percent_bps, min_purchase,
	COALESCE(product_ids, '{}'), COALESCE(category_ids, '{}'),
	active, starts_at, ends_at`

// List returns every promotion, newest first.
func (s *Store) List(ctx context.Context) ([]promo.Promotion, error) {
	rows, err := s.Pool.Query(ctx, "SELECT"+promotionColumns+" FROM promotions ORDER BY starts_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()
	return scanPromotions(rows)
}

// Active returns promotions whose stored window covers now. The engine
// re-checks the window itself; this filter just keeps the result set small.
func (s *Store) Active(ctx context.Context, now time.Time) ([]promo.Promotion, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT"+promotionColumns+" FROM promotions WHERE active AND starts_at <= $1 AND ends_at >= $1",
		now)
	if err != nil {
		return nil, fmt.Errorf("active promotions: %w", err)
	}
	defer rows.Close()
	return scanPromotions(rows)
}

func scanPromotions(rows pgx.Rows) ([]promo.Promotion, error) {
	var out []promo.Promotion
	for rows.Next() {
		var (
			p           promo.Promotion
			kind        string
			productIDs  []uuid.UUID
			categoryIDs []uuid.UUID
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &kind, &p.Value, &p.PercentBps, &p.MinPurchase,
			&productIDs, &categoryIDs,
			&p.Active, &p.StartsAt, &p.EndsAt,
		); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		p.Kind = promo.Kind(kind)
		p.Scope = promo.RestrictedTo(productIDs, categoryIDs)
		out = append(out, p)
	}
	return out, rows.Err()
}
