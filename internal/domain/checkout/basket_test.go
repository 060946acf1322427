package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBasket_Empty(t *testing.T) {
	a := NewAssembler(Config{})

	items, total, err := a.NormalizeBasket(nil)
	require.Nil(t, items)
	assert.True(t, total.IsZero())
	requireValidation(t, err, "cart is empty")
}

func TestNormalizeBasket_Flattening(t *testing.T) {
	a := NewAssembler(Config{Category: "Books"})

	cart := []CartItem{
		item("1", "A", "0.10", "3"),
		item("2", "B", "19.99", "7"),
		item("3", "C", "0", "1"),
	}
	items, total, err := a.NormalizeBasket(cart)
	require.NoError(t, err)
	require.Len(t, items, len(cart))

	sum := decimal.Zero
	for _, bi := range items {
		assert.Equal(t, 1, bi.Quantity)
		assert.Equal(t, "Books", bi.Category1)
		assert.Equal(t, "PHYSICAL", bi.ItemType)
		sum = sum.Add(bi.Price)
	}
	assert.True(t, sum.Equal(total), "sum %s total %s", sum, total)
	assert.True(t, decimal.RequireFromString("140.23").Equal(total), "total %s", total)
}

func TestNormalizeBasket_QuantityDefaults(t *testing.T) {
	a := NewAssembler(Config{})

	cart := []CartItem{
		{ID: Number("1"), Name: "missing qty", Price: Number("4.25")},
		item("2", "zero qty", "4.25", "0"),
		item("3", "negative qty", "4.25", "-2"),
	}
	items, total, err := a.NormalizeBasket(cart)
	require.NoError(t, err)

	for _, bi := range items {
		assert.True(t, decimal.RequireFromString("4.25").Equal(bi.Price), "%s: %s", bi.Name, bi.Price)
	}
	assert.True(t, decimal.RequireFromString("12.75").Equal(total))
}

func TestNormalizeBasket_RoundsLineTotals(t *testing.T) {
	a := NewAssembler(Config{})

	items, total, err := a.NormalizeBasket([]CartItem{
		item("1", "A", "0.335", "1"),
		item("2", "B", "0.335", "1"),
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("0.34").Equal(items[0].Price))
	assert.True(t, decimal.RequireFromString("0.68").Equal(total), "total %s", total)
}

func TestNormalizeBasket_InvalidItems(t *testing.T) {
	a := NewAssembler(Config{})

	tests := []struct {
		name string
		item CartItem
	}{
		{"negative price", item("1", "A", "-1", "1")},
		{"text price", CartItem{ID: Number("1"), Price: Text("abc"), Quantity: Number("1")}},
		{"missing price", CartItem{ID: Number("1"), Quantity: Number("1")}},
		{"fractional quantity", item("1", "A", "1", "1.5")},
		{"text quantity", CartItem{ID: Number("1"), Price: Number("1"), Quantity: Text("many")}},
		{"quantity past uint64", item("1", "A", "10", "18446744073709551617")},
		{"quantity past int64", item("1", "A", "10", "9223372036854775808")},
		{"quantity above limit", item("1", "A", "10", "100001")},
		{"huge price exponent", CartItem{ID: Number("1"), Price: Text("1e50000000"), Quantity: Number("1")}},
		{"huge quantity exponent", item("1", "A", "10", "1e50000000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := a.NormalizeBasket([]CartItem{item("0", "ok", "1", "1"), tt.item})
			requireValidation(t, err, "invalid cart item")
		})
	}
}

func TestNormalizeBasket_LargeQuantity(t *testing.T) {
	a := NewAssembler(Config{})

	items, total, err := a.NormalizeBasket([]CartItem{item("1", "A", "0.01", "100000")})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000").Equal(items[0].Price), "price %s", items[0].Price)
	assert.True(t, items[0].Price.Equal(total))
}
