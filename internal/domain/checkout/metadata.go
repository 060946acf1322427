package checkout

import (
	"strconv"
)

// System metadata keys.
const (
	MetaCartItemsCount      = "cart_items_count"
	MetaApplicationName     = "application_name"
	MetaSelectedInstallment = "selected_installment"
	MetaSameBillingShipping = "same_billing_shipping"
)

// BuildMetadata returns the system tags (item count, application name, then
// any extra system tags) followed by the client entries in their original
// order.
func (a *Assembler) BuildMetadata(cart []CartItem, client []MetadataEntry, extra ...MetadataEntry) []MetadataEntry {
	out := make([]MetadataEntry, 0, 2+len(extra)+len(client))
	out = append(out,
		MetadataEntry{Key: MetaCartItemsCount, Value: strconv.Itoa(len(cart))},
		MetadataEntry{Key: MetaApplicationName, Value: a.cfg.ApplicationName},
	)
	out = append(out, extra...)
	out = append(out, client...)
	return out
}
