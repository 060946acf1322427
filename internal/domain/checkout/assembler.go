package checkout

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Assembler builds provider-ready order requests from client submissions.
type Assembler struct {
	cfg Config
	now func() time.Time
}

// NewAssembler creates an Assembler. Unset configuration values fall back to
// the package defaults.
func NewAssembler(cfg Config) *Assembler {
	cfg.setDefaults()
	return &Assembler{
		cfg: cfg,
		now: time.Now,
	}
}

// Config returns the effective configuration.
func (a *Assembler) Config() Config {
	return a.cfg
}

// Assemble validates the submission and builds the order request. Steps run
// in a fixed order: basket, addresses, buyer, installment, metadata, callback
// URLs. The first failing step aborts assembly and its error is returned.
func (a *Assembler) Assemble(sub Submission, origin Origin) (*OrderRequest, error) {
	basket, total, err := a.NormalizeBasket(sub.Cart)
	if err != nil {
		return nil, err
	}

	billing, shipping, err := a.ResolveAddresses(sub.Billing, sub.Shipping, sub.SameAddress)
	if err != nil {
		return nil, err
	}

	buyer := a.DeriveBuyer(billing)
	buyer.IP = origin.ClientIP

	requested, err := requestedInstallment(sub.Installment)
	if err != nil {
		return nil, err
	}
	installment, enabled, err := a.ValidateInstallment(requested)
	if err != nil {
		return nil, err
	}

	metadata := a.BuildMetadata(sub.Cart, sub.Metadata,
		MetadataEntry{Key: MetaSelectedInstallment, Value: strconv.Itoa(installment)},
		MetadataEntry{Key: MetaSameBillingShipping, Value: strconv.FormatBool(sub.SameAddress)},
	)

	req := &OrderRequest{
		Amount:              total,
		Currency:            firstNonEmpty(sub.Currency, a.cfg.Currency),
		Locale:              firstNonEmpty(sub.Locale, a.cfg.Locale),
		ConversationID:      strings.TrimSpace(sub.ConversationID),
		Description:         sub.Description,
		Buyer:               buyer,
		BillingAddress:      billing,
		ShippingAddress:     shipping,
		BasketItems:         basket,
		Metadata:            metadata,
		Installment:         installment,
		EnabledInstallments: enabled,
		PaymentOptions:      slices.Clone(sub.PaymentOptions),
		ThreeDForce:         sub.ThreeDForce,
		PaymentMethods:      sub.PaymentMethods,
		SuccessURL:          origin.BaseURL() + "/payment/success",
		FailureURL:          origin.BaseURL() + "/payment/failure",
	}
	if req.ConversationID == "" {
		req.ConversationID = NewConversationID(a.now())
	}
	if len(req.PaymentOptions) == 0 {
		req.PaymentOptions = slices.Clone(a.cfg.PaymentOptions)
	}

	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
