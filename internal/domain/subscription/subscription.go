// Package subscription creates and manages recurring payments.
package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// DefaultCycle is the number of billing periods when the client sends none.
const DefaultCycle = 12

// Request is the raw subscription input posted by a client.
type Request struct {
	Name            string          `json:"name"`
	Amount          checkout.Scalar `json:"amount"`
	Period          int             `json:"period"`
	PaymentDate     int             `json:"payment_date"`
	Cycle           int             `json:"cycle"`
	CardID          string          `json:"card_id,omitempty"`
	SubscriberName  string          `json:"subscriber_name"`
	SubscriberEmail string          `json:"subscriber_email"`
	SubscriberPhone string          `json:"subscriber_phone"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	ZipCode         string          `json:"zip_code"`
}

// Result is a created subscription. CheckoutURL is the payment page of the
// first period's order, when the provider created one.
type Result struct {
	ReferenceID string                   `json:"reference_id"`
	CheckoutURL payment.Optional[string] `json:"checkout_url"`
}

// Service creates subscriptions.
type Service struct {
	provider payment.SubscriptionProvider
	orders   payment.OrderProvider
	cfg      checkout.Config
	now      func() time.Time
}

// NewService creates a subscription Service. Currency, country and identity
// placeholder come from cfg.
func NewService(provider payment.SubscriptionProvider, orders payment.OrderProvider, cfg checkout.Config) *Service {
	return &Service{
		provider: provider,
		orders:   orders,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Build validates the request and maps it to the provider shape.
func (s *Service) Build(req Request, origin checkout.Origin) (*payment.SubscriptionRequest, error) {
	amount, err := req.Amount.Decimal()
	if err != nil || !amount.IsPositive() {
		return nil, checkout.Invalidf("invalid subscription amount")
	}
	email := strings.TrimSpace(req.SubscriberEmail)
	if email == "" {
		return nil, checkout.Invalidf("missing subscriber field: subscriber_email")
	}
	if req.Period < 0 {
		return nil, checkout.Invalidf("invalid subscription period")
	}

	title := strings.TrimSpace(req.Name)
	if title == "" {
		title = "Subscription"
	}
	period := max(req.Period, 1)
	cycle := req.Cycle
	if cycle < 1 {
		cycle = DefaultCycle
	}

	first, last := splitName(req.SubscriberName)
	if first == "" {
		first, last = "Subscriber", email
	}

	return &payment.SubscriptionRequest{
		Title:               title,
		Amount:              amount.Round(2),
		Currency:            s.cfg.Currency,
		Period:              period,
		PaymentDate:         max(req.PaymentDate, 1),
		Cycle:               cycle,
		CardID:              req.CardID,
		ExternalReferenceID: checkout.NewReference("SUB", s.now()),
		SuccessURL:          origin.BaseURL() + "/payment/success",
		FailureURL:          origin.BaseURL() + "/payment/failure",
		User: payment.SubscriptionUser{
			FirstName:      first,
			LastName:       last,
			Email:          email,
			Phone:          req.SubscriberPhone,
			Address:        req.Address,
			City:           req.City,
			Country:        s.cfg.Country,
			ZipCode:        req.ZipCode,
			IdentityNumber: s.cfg.IdentityPlaceholder,
		},
		Billing: payment.SubscriptionBilling{
			ContactName: strings.TrimSpace(first + " " + last),
			Address:     req.Address,
			City:        req.City,
			Country:     s.cfg.Country,
			ZipCode:     req.ZipCode,
		},
	}, nil
}

// Create builds and submits a subscription. The checkout URL of its first
// order is looked up on a best effort basis.
func (s *Service) Create(ctx context.Context, req Request, origin checkout.Origin) (*Result, error) {
	sub, err := s.Build(req, origin)
	if err != nil {
		return nil, err
	}

	res, err := s.provider.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, errors.Wrap(err, "create subscription")
	}

	out := &Result{ReferenceID: res.ReferenceID}
	if res.OrderReferenceID != "" {
		out.CheckoutURL = payment.BestEffort(ctx, "get subscription checkout url", func(ctx context.Context) (string, error) {
			return s.orders.GetCheckoutURL(ctx, res.OrderReferenceID)
		})
	}
	return out, nil
}

// List returns one page of subscriptions. Provider failures yield an empty
// page.
func (s *Service) List(ctx context.Context, page, perPage int) *payment.Page {
	return payment.BestEffort(ctx, "list subscriptions", func(ctx context.Context) (*payment.Page, error) {
		return s.provider.ListSubscriptions(ctx, page, perPage)
	}).Or(payment.EmptyPage())
}

// Cancel cancels a subscription.
func (s *Service) Cancel(ctx context.Context, referenceID string) error {
	if strings.TrimSpace(referenceID) == "" {
		return checkout.Invalidf("subscription_id is required")
	}
	return s.provider.CancelSubscription(ctx, referenceID)
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
