package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/tapsilat-checkout/internal/domain/order"
)

const (
	createCheckoutSQL = `INSERT INTO checkouts
		(reference_id, order_id, conversation_id, amount, currency, installment, item_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (reference_id) DO NOTHING`

	listCheckoutsSQL = `SELECT reference_id, order_id, conversation_id, amount, currency,
		installment, item_count, created_at
		FROM checkouts ORDER BY created_at DESC LIMIT $1`
)

var _ order.Repository = (*CheckoutRepository)(nil)

// CheckoutRepository implements order.Repository backed by PostgreSQL.
type CheckoutRepository struct {
	pool *pgxpool.Pool
}

// NewCheckoutRepository returns a CheckoutRepository that uses the given pool.
func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{pool: pool}
}

// Create records an accepted order. Recording the same reference twice is a
// no-op.
func (r *CheckoutRepository) Create(ctx context.Context, c *order.Checkout) error {
	_, err := r.pool.Exec(ctx, createCheckoutSQL,
		c.ReferenceID, c.OrderID, c.ConversationID, c.Amount, c.Currency,
		int32(c.Installment), int32(c.ItemCount), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating checkout %q: %w", c.ReferenceID, err)
	}
	return nil
}

// List returns the most recent checkouts, newest first.
func (r *CheckoutRepository) List(ctx context.Context, limit int) ([]order.Checkout, error) {
	rows, err := r.pool.Query(ctx, listCheckoutsSQL, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("listing checkouts: %w", err)
	}

	out, err := pgx.CollectRows(rows, scanCheckout)
	if err != nil {
		return nil, fmt.Errorf("listing checkouts: %w", err)
	}
	return out, nil
}

func scanCheckout(row pgx.CollectableRow) (order.Checkout, error) {
	var (
		c           order.Checkout
		installment int32
		itemCount   int32
	)
	err := row.Scan(
		&c.ReferenceID, &c.OrderID, &c.ConversationID, &c.Amount, &c.Currency,
		&installment, &itemCount, &c.CreatedAt,
	)
	c.Installment = int(installment)
	c.ItemCount = int(itemCount)
	return c, err
}
