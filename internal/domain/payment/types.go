package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionUser is the subscriber sent with a subscription.
type SubscriptionUser struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	City           string
	Country        string
	ZipCode        string
	IdentityNumber string
}

// SubscriptionBilling is the billing address sent with a subscription.
type SubscriptionBilling struct {
	ContactName string
	Address     string
	City        string
	Country     string
	ZipCode     string
}

// SubscriptionRequest creates a recurring payment.
type SubscriptionRequest struct {
	Title               string
	Amount              decimal.Decimal
	Currency            string
	Period              int
	PaymentDate         int
	Cycle               int
	CardID              string
	ExternalReferenceID string
	SuccessURL          string
	FailureURL          string
	User                SubscriptionUser
	Billing             SubscriptionBilling
}

// SubscriptionResult is the provider's answer to a subscription creation.
// OrderReferenceID points to the order that collects the first payment.
type SubscriptionResult struct {
	ReferenceID      string
	OrderReferenceID string
}

// TermRequest creates a payment term inside an order.
type TermRequest struct {
	OrderID         string
	TermReferenceID string
	Amount          decimal.Decimal
	DueDate         time.Time
	TermSequence    int
	Required        bool
	Status          string
}

// TermUpdate changes an existing payment term. Zero fields are left as-is.
type TermUpdate struct {
	TermReferenceID string
	Amount          decimal.NullDecimal
	DueDate         time.Time
	Required        *bool
	Status          string
}

// TermRefund refunds a paid payment term.
type TermRefund struct {
	TermID        string
	Amount        decimal.Decimal
	ReferenceID   string
	TermPaymentID string
}
