package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Checkout is a ledger row for an order the provider accepted.
type Checkout struct {
	ReferenceID    string          `json:"reference_id"`
	OrderID        string          `json:"order_id"`
	ConversationID string          `json:"conversation_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Installment    int             `json:"installment"`
	ItemCount      int             `json:"item_count"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Repository defines persistence operations for the checkout ledger.
type Repository interface {
	Create(ctx context.Context, c *Checkout) error
	// List returns the most recent checkouts, newest first.
	List(ctx context.Context, limit int) ([]Checkout, error)
}
