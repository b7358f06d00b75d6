package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/pos-api/internal/checkout"
)

const (
	// StatusCompleted marks a finalized, countable sale.
	StatusCompleted = "COMPLETED"
	// StatusVoided marks a reversed sale. Voiding does not restock items.
	StatusVoided = "VOIDED"
)

var (
	// ErrNotFound is returned when a transaction lookup matches no row.
	ErrNotFound = errors.New("transaction: not found")
	// ErrAlreadyVoided is returned when voiding a non-completed transaction.
	ErrAlreadyVoided = errors.New("transaction: already voided")
)

// DBPool is the subset of pgxpool.Pool the store needs.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Store persists finalized transactions. It implements checkout.Sink.
type Store struct {
	Pool DBPool
	Now  func() time.Time
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Save writes the transaction header and its lines atomically and returns
// the stored receipt.
func (s *Store) Save(ctx context.Context, fin checkout.FinalizedTransaction) (checkout.Receipt, error) {
	now := s.now()
	number := Number(now)

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return checkout.Receipt{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions
			(number, cashier_id, payment_method, status, subtotal, tax, discount, total, tendered, change, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		number, fin.CashierID, string(fin.PaymentMethod), StatusCompleted,
		fin.Subtotal, fin.Tax, fin.Discount, fin.Total, fin.Tendered, fin.Change,
		fin.Notes, now,
	).Scan(&id)
	if err != nil {
		return checkout.Receipt{}, fmt.Errorf("insert transaction: %w", err)
	}

	for _, l := range fin.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, name, qty, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, l.ProductID, l.Name, l.Quantity, l.UnitPrice, l.LineTotal,
		); err != nil {
			return checkout.Receipt{}, fmt.Errorf("insert transaction item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return checkout.Receipt{}, fmt.Errorf("commit: %w", err)
	}

	return checkout.Receipt{
		ID:            id,
		Number:        number,
		Status:        StatusCompleted,
		PaymentMethod: fin.PaymentMethod,
		CashierID:     fin.CashierID,
		Subtotal:      fin.Subtotal,
		Tax:           fin.Tax,
		Discount:      fin.Discount,
		Total:         fin.Total,
		Tendered:      fin.Tendered,
		Change:        fin.Change,
		Notes:         fin.Notes,
		Lines:         fin.Lines,
		CreatedAt:     now,
	}, nil
}

const receiptColumns = `
	id, number, status, payment_method, cashier_id,
	subtotal, tax, discount, total, tendered, change,
	COALESCE(notes, ''), created_at`

// List returns recent transactions, newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]checkout.Receipt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		"SELECT"+receiptColumns+" FROM transactions ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var out []checkout.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one transaction with its lines.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (checkout.Receipt, error) {
	row := s.Pool.QueryRow(ctx, "SELECT"+receiptColumns+" FROM transactions WHERE id = $1", id)
	rec, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return checkout.Receipt{}, ErrNotFound
		}
		return checkout.Receipt{}, err
	}
	lines, err := s.lines(ctx, id)
	if err != nil {
		return checkout.Receipt{}, err
	}
	rec.Lines = lines
	return rec, nil
}

// Void flips a completed transaction to VOIDED. It is not idempotent: a
// second void reports ErrAlreadyVoided so the register can tell the operator.
func (s *Store) Void(ctx context.Context, id uuid.UUID) (checkout.Receipt, error) {
	var status string
	err := s.Pool.QueryRow(ctx, "SELECT status FROM transactions WHERE id = $1", id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return checkout.Receipt{}, ErrNotFound
	}
	if err != nil {
		return checkout.Receipt{}, fmt.Errorf("load transaction: %w", err)
	}
	if status != StatusCompleted {
		return checkout.Receipt{}, ErrAlreadyVoided
	}
	if _, err := s.Pool.Exec(ctx,
		"UPDATE transactions SET status = $2 WHERE id = $1", id, StatusVoided,
	); err != nil {
		return checkout.Receipt{}, fmt.Errorf("void transaction: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) lines(ctx context.Context, id uuid.UUID) ([]checkout.TransactionLine, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT product_id, name, qty, unit_price, line_total
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY product_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	var out []checkout.TransactionLine
	for rows.Next() {
		var l checkout.TransactionLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanReceipt(row pgx.Row) (checkout.Receipt, error) {
	var (
		rec    checkout.Receipt
		method string
	)
	err := row.Scan(
		&rec.ID, &rec.Number, &rec.Status, &method, &rec.CashierID,
		&rec.Subtotal, &rec.Tax, &rec.Discount, &rec.Total, &rec.Tendered, &rec.Change,
		&rec.Notes, &rec.CreatedAt,
	)
	if err != nil {
		return checkout.Receipt{}, err
	}
	rec.PaymentMethod = checkout.PaymentMethod(method)
	return rec, nil
}
