package checkout

import (
	"strings"

	"github.com/google/uuid"
)

type requiredField struct {
	name  string
	value func(*Address) string
}

var (
	fieldContactName = requiredField{"contact_name", func(a *Address) string { return a.ContactName }}
	fieldEmail       = requiredField{"email", func(a *Address) string { return a.Email }}
	fieldPhone       = requiredField{"contact_phone", func(a *Address) string { return a.Phone }}
	fieldAddress     = requiredField{"address", func(a *Address) string { return a.AddressLine }}
	fieldCity        = requiredField{"city", func(a *Address) string { return a.City }}

	billingFields  = []requiredField{fieldContactName, fieldEmail, fieldPhone, fieldAddress, fieldCity}
	shippingFields = []requiredField{fieldContactName, fieldPhone, fieldAddress, fieldCity}
)

func missingField(a *Address, fields []requiredField) string {
	for _, f := range fields {
		if strings.TrimSpace(f.value(a)) == "" {
			return f.name
		}
	}
	return ""
}

// ResolveAddresses validates the billing address and picks the shipping
// address. Shipping is a copy of billing when sameAddress is set or no
// shipping address was supplied. The configured country is forced on both.
func (a *Assembler) ResolveAddresses(billing, shipping *Address, sameAddress bool) (Address, Address, error) {
	if billing.IsZero() {
		return Address{}, Address{}, Invalidf(MsgBillingRequired)
	}
	if name := missingField(billing, billingFields); name != "" {
		return Address{}, Address{}, Invalidf("missing billing field: %s", name)
	}

	b := *billing
	b.Country = a.cfg.Country

	if sameAddress || shipping.IsZero() {
		// Address has only value fields, so assignment is a full copy.
		return b, b, nil
	}

	if name := missingField(shipping, shippingFields); name != "" {
		return Address{}, Address{}, Invalidf("missing shipping field: %s", name)
	}
	s := *shipping
	s.Country = a.cfg.Country
	s.TaxID = ""

	return b, s, nil
}

// DeriveBuyer builds the buyer from the billing address. The first
// whitespace-delimited token of the contact name becomes the first name and
// the remainder the last name.
func (a *Assembler) DeriveBuyer(billing Address) Buyer {
	first, last := splitName(billing.ContactName)
	if last == "" {
		last = a.cfg.LastNamePlaceholder
	}

	identity := strings.TrimSpace(billing.TaxID)
	if identity == "" {
		identity = a.cfg.IdentityPlaceholder
	}

	return Buyer{
		ID:             newBuyerID(),
		FirstName:      first,
		LastName:       last,
		Email:          billing.Email,
		Phone:          billing.Phone,
		IdentityNumber: identity,
		Address:        billing.AddressLine,
		City:           billing.City,
		Country:        a.cfg.Country,
		ZipCode:        billing.ZipCode,
	}
}

func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	i := strings.IndexFunc(name, isSpace)
	if i < 0 {
		return name, ""
	}
	return name[:i], strings.TrimSpace(name[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func newBuyerID() string {
	id := uuid.New()
	return "BUYER_" + strings.ReplaceAll(id.String(), "-", "")[:10]
}
