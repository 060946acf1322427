// Package payment describes the payment provider the checkout talks to.
package payment

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
)

// OrderResult is the provider's answer to an order creation.
type OrderResult struct {
	ReferenceID string
	OrderID     string
	CheckoutURL string
}

// ListFilter narrows an order listing.
type ListFilter struct {
	Page               int
	PerPage            int
	StartDate          string
	EndDate            string
	OrganizationID     string
	RelatedReferenceID string
}

// Page is one page of provider rows. Rows are relayed to the caller as-is.
type Page struct {
	Rows       []json.RawMessage `json:"rows"`
	TotalCount int               `json:"total_count"`
}

// EmptyPage is returned by lenient reads when the provider fails.
func EmptyPage() *Page {
	return &Page{Rows: []json.RawMessage{}}
}

// OrderProvider manages orders.
type OrderProvider interface {
	CreateOrder(ctx context.Context, req *checkout.OrderRequest) (*OrderResult, error)
	GetCheckoutURL(ctx context.Context, referenceID string) (string, error)
	GetOrder(ctx context.Context, referenceID string) (json.RawMessage, error)
	GetOrderStatus(ctx context.Context, referenceID string) (json.RawMessage, error)
	GetOrderByConversationID(ctx context.Context, conversationID string) (json.RawMessage, error)
	GetOrderTransactions(ctx context.Context, referenceID string) (json.RawMessage, error)
	ListOrders(ctx context.Context, filter ListFilter) (*Page, error)
	ListSubmerchants(ctx context.Context, page, perPage int) (*Page, error)
	CancelOrder(ctx context.Context, referenceID string) (json.RawMessage, error)
	// RefundOrder refunds amount, or the whole order when amount is not valid.
	RefundOrder(ctx context.Context, referenceID string, amount decimal.NullDecimal) (json.RawMessage, error)
	TerminateOrder(ctx context.Context, referenceID string) (json.RawMessage, error)
	ManualCallback(ctx context.Context, referenceID, conversationID string) (json.RawMessage, error)
}

// SubscriptionProvider manages recurring payments.
type SubscriptionProvider interface {
	CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*SubscriptionResult, error)
	ListSubscriptions(ctx context.Context, page, perPage int) (*Page, error)
	CancelSubscription(ctx context.Context, referenceID string) error
}

// TermProvider manages payment terms attached to an order.
type TermProvider interface {
	CreateTerm(ctx context.Context, req *TermRequest) (json.RawMessage, error)
	GetTerm(ctx context.Context, termReferenceID string) (json.RawMessage, error)
	UpdateTerm(ctx context.Context, req *TermUpdate) (json.RawMessage, error)
	DeleteTerm(ctx context.Context, orderID, termReferenceID string) (json.RawMessage, error)
	RefundTerm(ctx context.Context, req *TermRefund) (json.RawMessage, error)
}

// OrganizationProvider exposes merchant settings.
type OrganizationProvider interface {
	GetOrganizationSettings(ctx context.Context) (json.RawMessage, error)
}

// Provider is the full provider surface.
type Provider interface {
	OrderProvider
	SubscriptionProvider
	TermProvider
	OrganizationProvider
}
