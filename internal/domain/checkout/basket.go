package checkout

import (
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity accepted for a cart line.
const MaxQuantity = 100_000

// NormalizeBasket flattens the cart into provider basket items and returns
// the reconciled order total.
//
// Each line is pre-multiplied: the basket item price is
// round(price * max(quantity, 1), 2) and its quantity is 1, so the provider's
// basket sum always equals the order amount.
func (a *Assembler) NormalizeBasket(cart []CartItem) ([]BasketItem, decimal.Decimal, error) {
	if len(cart) == 0 {
		return nil, decimal.Zero, Invalidf(MsgCartEmpty)
	}

	items := make([]BasketItem, len(cart))
	total := decimal.Zero
	for i, item := range cart {
		lineTotal, err := lineTotal(item)
		if err != nil {
			return nil, decimal.Zero, err
		}
		items[i] = BasketItem{
			ID:        item.ID.String(),
			Name:      item.Name,
			Price:     lineTotal,
			Quantity:  1,
			Category1: a.cfg.Category,
			ItemType:  DefaultItemType,
		}
		total = total.Add(lineTotal)
	}

	return items, total.Round(2), nil
}

func lineTotal(item CartItem) (decimal.Decimal, error) {
	price, err := item.Price.Decimal()
	if err != nil || price.IsNegative() {
		return decimal.Zero, Invalidf(MsgInvalidCartItem)
	}

	qty := 1
	if item.Quantity.IsSet() {
		n, err := item.Quantity.Int()
		if err != nil || n > MaxQuantity {
			return decimal.Zero, Invalidf(MsgInvalidCartItem)
		}
		qty = max(n, 1)
	}

	return price.Mul(decimal.NewFromInt(int64(qty))).Round(2), nil
}
