// Package checkout turns a raw cart and address submission into a
// provider-ready order request.
//
// The assembler is stateless: every exported operation is a pure
// transformation of its input plus the configured defaults, so a single
// Assembler may be shared by concurrent requests.
package checkout

import (
	"github.com/shopspring/decimal"
)

// CartItem is a single client-side cart line. Price and quantity arrive as
// JSON numbers or numeric strings.
type CartItem struct {
	ID       Scalar `json:"id"`
	Name     string `json:"name"`
	Price    Scalar `json:"price"`
	Quantity Scalar `json:"quantity"`
}

// Address is a billing or shipping address. Email and TaxID are only
// required on billing addresses.
type Address struct {
	ContactName string `json:"contact_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"contact_phone"`
	AddressLine string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	ZipCode     string `json:"zip_code,omitempty"`
	TaxID       string `json:"vat_number,omitempty"`
}

// IsZero reports whether no address field was supplied.
func (a *Address) IsZero() bool {
	return a == nil || *a == Address{}
}

// MetadataEntry is a key/value tag forwarded to the provider.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Submission is the raw order-creation input as posted by a client.
type Submission struct {
	Cart           []CartItem      `json:"cart"`
	Billing        *Address        `json:"billing"`
	Shipping       *Address        `json:"shipping,omitempty"`
	SameAddress    bool            `json:"same_address"`
	Installment    Scalar          `json:"installment"`
	ConversationID string          `json:"conversation_id"`
	Description    string          `json:"description"`
	Locale         string          `json:"locale"`
	Currency       string          `json:"currency"`
	ThreeDForce    bool            `json:"three_d_force"`
	PaymentMethods bool            `json:"payment_methods"`
	PaymentOptions []string        `json:"payment_options"`
	Metadata       []MetadataEntry `json:"metadata"`
}

// Origin describes the caller of an order-creation request. Callback URLs
// and the buyer IP are derived from it.
type Origin struct {
	Scheme   string
	Host     string
	ClientIP string
}

// BaseURL returns scheme://host for the origin.
func (o Origin) BaseURL() string {
	scheme := o.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + o.Host
}

// BasketItem is a flattened basket line: Price holds the pre-multiplied line
// total and Quantity is always 1.
type BasketItem struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Category1 string
	Category2 string
	ItemType  string
}

// Buyer is derived from the billing address.
type Buyer struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	IdentityNumber string
	Address        string
	City           string
	Country        string
	ZipCode        string
	IP             string
}

// OrderRequest is the reconciled, provider-shaped order. Amount always equals
// the sum of BasketItems prices.
type OrderRequest struct {
	Amount              decimal.Decimal
	Currency            string
	Locale              string
	ConversationID      string
	Description         string
	Buyer               Buyer
	BillingAddress      Address
	ShippingAddress     Address
	BasketItems         []BasketItem
	Metadata            []MetadataEntry
	Installment         int
	EnabledInstallments []int
	PaymentOptions      []string
	ThreeDForce         bool
	PaymentMethods      bool
	SuccessURL          string
	FailureURL          string
}
