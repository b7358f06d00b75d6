package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("catalog: not found")

// DBPool is the subset of pgxpool.Pool the store needs, kept narrow so tests
// can substitute a fake.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads product and category snapshots from Postgres. Products carry
// their category's tax rate so callers never need a second lookup.
type Store struct {
	Pool DBPool
}

const productColumns = `
	p.id, p.name, COALESCE(p.description, ''), COALESCE(p.barcode, ''),
	p.price, p.cost, p.current_stock, p.category_id,
	COALESCE(c.tax_rate_bps, 0), p.food_assistance_eligible, p.active,
	p.created_at, p.updated_at`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

// ListParams filters product listing.
type ListParams struct {
	Query      string
	CategoryID *uuid.UUID
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ListProducts returns products ordered by name.
func (s *Store) ListProducts(ctx context.Context, params ListParams) ([]Product, error) {
	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.barcode ILIKE $%d)", len(args), len(args)))
	}
	if params.CategoryID != nil {
		args = append(args, *params.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if params.ActiveOnly {
		conds = append(conds, "p.active")
	}
	query := "SELECT" + productColumns + productFrom
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.name"
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.Pool.QueryRow(ctx, "SELECT"+productColumns+productFrom+" WHERE p.id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// GetProductByBarcode fetches one product by its scan code.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := s.Pool.QueryRow(ctx, "SELECT"+productColumns+productFrom+" WHERE p.barcode = $1", barcode)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// ProductsByID resolves a batch of ids into snapshots. Missing ids are simply
// absent from the result map.
func (s *Store) ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]Product{}, nil
	}
	rows, err := s.Pool.Query(ctx, "SELECT"+productColumns+productFrom+" WHERE p.id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("products by id: %w", err)
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), tax_rate_bps, created_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TaxRateBps, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Barcode,
		&p.Price, &p.Cost, &p.CurrentStock, &p.CategoryID,
		&p.TaxRateBps, &p.FoodAssistanceEligible, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}
