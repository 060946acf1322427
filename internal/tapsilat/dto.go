package tapsilat

import (
	"time"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// Wire shapes of the Tapsilat API. Amounts travel as JSON numbers with two
// decimal places.

type buyerDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	Email               string `json:"email"`
	GsmNumber           string `json:"gsm_number"`
	IdentityNumber      string `json:"identity_number"`
	RegistrationAddress string `json:"registration_address"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zip_code,omitempty"`
	IP                  string `json:"ip,omitempty"`
}

type addressDTO struct {
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	ZipCode      string `json:"zip_code,omitempty"`
	VatNumber    string `json:"vat_number,omitempty"`
}

type basketItemDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Price     payment.Money `json:"price"`
	Quantity  int           `json:"quantity"`
	Category1 string        `json:"category1"`
	Category2 string        `json:"category2,omitempty"`
	ItemType  string        `json:"item_type"`
}

type orderDTO struct {
	Locale              string                   `json:"locale"`
	Currency            string                   `json:"currency"`
	Amount              payment.Money            `json:"amount"`
	ConversationID      string                   `json:"conversation_id"`
	Description         string                   `json:"description,omitempty"`
	PaymentSuccessURL   string                   `json:"payment_success_url"`
	PaymentFailureURL   string                   `json:"payment_failure_url"`
	Buyer               buyerDTO                 `json:"buyer"`
	BillingAddress      addressDTO               `json:"billing_address"`
	ShippingAddress     addressDTO               `json:"shipping_address"`
	BasketItems         []basketItemDTO          `json:"basket_items"`
	Metadata            []checkout.MetadataEntry `json:"metadata,omitempty"`
	ThreeDForce         bool                     `json:"three_d_force"`
	PaymentMethods      bool                     `json:"payment_methods"`
	PaymentOptions      []string                 `json:"payment_options,omitempty"`
	EnabledInstallments []int                    `json:"enabled_installments,omitempty"`
}

type orderResponseDTO struct {
	ReferenceID string `json:"reference_id"`
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

type referenceDTO struct {
	ReferenceID string `json:"reference_id"`
}

type refundDTO struct {
	ReferenceID string        `json:"reference_id"`
	Amount      payment.Money `json:"amount"`
}

type callbackDTO struct {
	ReferenceID    string `json:"reference_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type subscriptionUserDTO struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	Country        string `json:"country,omitempty"`
	ZipCode        string `json:"zip_code,omitempty"`
	IdentityNumber string `json:"identity_number,omitempty"`
}

type subscriptionBillingDTO struct {
	ContactName string `json:"contact_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	ZipCode     string `json:"zip_code,omitempty"`
}

type subscriptionDTO struct {
	Title               string                 `json:"title"`
	Amount              payment.Money          `json:"amount"`
	Currency            string                 `json:"currency"`
	Period              int                    `json:"period"`
	PaymentDate         int                    `json:"payment_date"`
	Cycle               int                    `json:"cycle"`
	CardID              string                 `json:"card_id,omitempty"`
	ExternalReferenceID string                 `json:"external_reference_id,omitempty"`
	SuccessURL          string                 `json:"success_url"`
	FailureURL          string                 `json:"failure_url"`
	User                subscriptionUserDTO    `json:"user"`
	Billing             subscriptionBillingDTO `json:"billing"`
}

type subscriptionResponseDTO struct {
	ReferenceID      string `json:"reference_id"`
	OrderReferenceID string `json:"order_reference_id"`
}

type subscriptionCancelDTO struct {
	ReferenceID    string `json:"reference_id"`
	SubscriptionID string `json:"subscription_id"`
}

type termDTO struct {
	OrderID         string        `json:"order_id"`
	TermReferenceID string        `json:"term_reference_id"`
	Amount          payment.Money `json:"amount"`
	DueDate         string        `json:"due_date"`
	TermSequence    int           `json:"term_sequence"`
	Required        bool          `json:"required"`
	Status          string        `json:"status"`
}

type termUpdateDTO struct {
	TermReferenceID string         `json:"term_reference_id"`
	Amount          *payment.Money `json:"amount,omitempty"`
	DueDate         string         `json:"due_date,omitempty"`
	Required        *bool          `json:"required,omitempty"`
	Status          string         `json:"status,omitempty"`
}

type termDeleteDTO struct {
	OrderID         string `json:"order_id,omitempty"`
	TermReferenceID string `json:"term_reference_id"`
}

type termRefundDTO struct {
	TermID        string        `json:"term_id"`
	Amount        payment.Money `json:"amount"`
	ReferenceID   string        `json:"reference_id,omitempty"`
	TermPaymentID string        `json:"term_payment_id,omitempty"`
}

func toAddressDTO(a checkout.Address) addressDTO {
	return addressDTO{
		ContactName:  a.ContactName,
		ContactPhone: a.Phone,
		Address:      a.AddressLine,
		City:         a.City,
		Country:      a.Country,
		ZipCode:      a.ZipCode,
		VatNumber:    a.TaxID,
	}
}

func toOrderDTO(req *checkout.OrderRequest) orderDTO {
	items := make([]basketItemDTO, len(req.BasketItems))
	for i, bi := range req.BasketItems {
		items[i] = basketItemDTO{
			ID:        bi.ID,
			Name:      bi.Name,
			Price:     payment.MoneyOf(bi.Price),
			Quantity:  bi.Quantity,
			Category1: bi.Category1,
			Category2: bi.Category2,
			ItemType:  bi.ItemType,
		}
	}

	return orderDTO{
		Locale:            req.Locale,
		Currency:          req.Currency,
		Amount:            payment.MoneyOf(req.Amount),
		ConversationID:    req.ConversationID,
		Description:       req.Description,
		PaymentSuccessURL: req.SuccessURL,
		PaymentFailureURL: req.FailureURL,
		Buyer: buyerDTO{
			ID:                  req.Buyer.ID,
			Name:                req.Buyer.FirstName,
			Surname:             req.Buyer.LastName,
			Email:               req.Buyer.Email,
			GsmNumber:           req.Buyer.Phone,
			IdentityNumber:      req.Buyer.IdentityNumber,
			RegistrationAddress: req.Buyer.Address,
			City:                req.Buyer.City,
			Country:             req.Buyer.Country,
			ZipCode:             req.Buyer.ZipCode,
			IP:                  req.Buyer.IP,
		},
		BillingAddress:      toAddressDTO(req.BillingAddress),
		ShippingAddress:     toAddressDTO(req.ShippingAddress),
		BasketItems:         items,
		Metadata:            req.Metadata,
		ThreeDForce:         req.ThreeDForce,
		PaymentMethods:      req.PaymentMethods,
		PaymentOptions:      req.PaymentOptions,
		EnabledInstallments: req.EnabledInstallments,
	}
}

func toSubscriptionDTO(req *payment.SubscriptionRequest) subscriptionDTO {
	return subscriptionDTO{
		Title:               req.Title,
		Amount:              payment.MoneyOf(req.Amount),
		Currency:            req.Currency,
		Period:              req.Period,
		PaymentDate:         req.PaymentDate,
		Cycle:               req.Cycle,
		CardID:              req.CardID,
		ExternalReferenceID: req.ExternalReferenceID,
		SuccessURL:          req.SuccessURL,
		FailureURL:          req.FailureURL,
		User: subscriptionUserDTO{
			FirstName:      req.User.FirstName,
			LastName:       req.User.LastName,
			Email:          req.User.Email,
			Phone:          req.User.Phone,
			Address:        req.User.Address,
			City:           req.User.City,
			Country:        req.User.Country,
			ZipCode:        req.User.ZipCode,
			IdentityNumber: req.User.IdentityNumber,
		},
		Billing: subscriptionBillingDTO{
			ContactName: req.Billing.ContactName,
			Address:     req.Billing.Address,
			City:        req.Billing.City,
			Country:     req.Billing.Country,
			ZipCode:     req.Billing.ZipCode,
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
