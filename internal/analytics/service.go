package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/pos-api/internal/pricing"
)

// DailySales is one day's aggregated register activity.
type DailySales struct {
	Day          time.Time     `json:"day"`
	Transactions int64         `json:"transactions"`
	GrossSales   pricing.Money `json:"grossSales"`
	Tax          pricing.Money `json:"tax"`
	Discount     pricing.Money `json:"discount"`
}

// MethodSales aggregates sales by tender type.
type MethodSales struct {
	PaymentMethod string        `json:"paymentMethod"`
	Transactions  int64         `json:"transactions"`
	GrossSales    pricing.Money `json:"grossSales"`
}

// TopProduct is one entry of the best-sellers report.
type TopProduct struct {
	ProductID uuid.UUID     `json:"productId"`
	Name      string        `json:"name"`
	Quantity  int64         `json:"quantity"`
	Revenue   pricing.Money `json:"revenue"`
}

// Overview summarises register activity for the current day.
type Overview struct {
	Day          time.Time     `json:"day"`
	Transactions int64         `json:"transactions"`
	GrossSales   pricing.Money `json:"grossSales"`
	Tax          pricing.Money `json:"tax"`
	Discount     pricing.Money `json:"discount"`
	ByMethod     []MethodSales `json:"byMethod"`
}

// Querier defines the database access required for analytics queries.
// Voided transactions are excluded from every aggregate.
type Querier interface {
	SalesDaily(ctx context.Context, from, to time.Time) ([]DailySales, error)
	SalesByMethod(ctx context.Context, from, to time.Time) ([]MethodSales, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}

// Service provides cached access to register analytics.
type Service struct {
	Q            Querier
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// SalesRange returns the per-day sales summary between from and to.
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	key := cacheKey("an", "sales", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached []DailySales
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Q.SalesDaily(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// SalesByMethod returns totals segmented by tender type.
func (s *Service) SalesByMethod(ctx context.Context, from, to time.Time) ([]MethodSales, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	key := cacheKey("an", "methods", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached []MethodSales
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Q.SalesByMethod(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// TopProducts returns the best sellers within the range.
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	key := cacheKey("an", "top", from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	var cached []TopProduct
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Q.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// TodayOverview summarises the current register day: transaction count,
// gross sales, and totals segmented by tender type.
func (s *Service) TodayOverview(ctx context.Context) (Overview, error) {
	if s == nil || s.Q == nil {
		return Overview{}, fmt.Errorf("analytics service not configured")
	}
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	key := cacheKey("an", "overview", from.Format("2006-01-02"))
	var cached Overview
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	days, err := s.Q.SalesDaily(ctx, from, to)
	if err != nil {
		return Overview{}, err
	}
	methods, err := s.Q.SalesByMethod(ctx, from, to)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{Day: from, ByMethod: methods}
	if len(days) > 0 {
		out.Transactions = days[0].Transactions
		out.GrossSales = days[0].GrossSales
		out.Tax = days[0].Tax
		out.Discount = days[0].Discount
	}
	s.store(ctx, key, out)
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}

// PGQuerier runs the analytics aggregates against Postgres.
type PGQuerier struct {
	Pool interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	}
}

// SalesDaily aggregates completed transactions per calendar day.
func (q *PGQuerier) SalesDaily(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	rows, err := q.Pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*), COALESCE(SUM(total), 0), COALESCE(SUM(tax), 0), COALESCE(SUM(discount), 0)
		FROM transactions
		WHERE status = 'COMPLETED' AND created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales daily: %w", err)
	}
	defer rows.Close()
	var out []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Day, &d.Transactions, &d.GrossSales, &d.Tax, &d.Discount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SalesByMethod aggregates completed transactions per tender type.
func (q *PGQuerier) SalesByMethod(ctx context.Context, from, to time.Time) ([]MethodSales, error) {
	rows, err := q.Pool.Query(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM(total), 0)
		FROM transactions
		WHERE status = 'COMPLETED' AND created_at >= $1 AND created_at < $2
		GROUP BY payment_method
		ORDER BY payment_method`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by method: %w", err)
	}
	defer rows.Close()
	var out []MethodSales
	for rows.Next() {
		var m MethodSales
		if err := rows.Scan(&m.PaymentMethod, &m.Transactions, &m.GrossSales); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TopProducts ranks items sold on completed transactions by quantity.
func (q *PGQuerier) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	rows, err := q.Pool.Query(ctx, `
		SELECT ti.product_id, ti.name, SUM(ti.qty), COALESCE(SUM(ti.line_total), 0)
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.status = 'COMPLETED' AND t.created_at >= $1 AND t.created_at < $2
		GROUP BY ti.product_id, ti.name
		ORDER BY SUM(ti.qty) DESC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	var out []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
