package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTwoItemCart(t *testing.T) {
	// 2 x 100.00 + 1 x 50.00 at 10% tax.
	items := []LineItem{
		{UnitPrice: 100, Quantity: 2},
		{UnitPrice: 50, Quantity: 1},
	}

	totals := Compute(items)

	assert.InDelta(t, 250.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 25.00, totals.Tax, 1e-9)
	assert.InDelta(t, 275.00, totals.Total, 1e-9)
}

func TestComputeEmptyCartIsAllZero(t *testing.T) {
	totals := Compute(nil)

	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.Tax)
	assert.Zero(t, totals.Total)
}

func TestComputeSkipsNonPositiveQuantities(t *testing.T) {
	items := []LineItem{
		{UnitPrice: 19.99, Quantity: 0},
		{UnitPrice: 9.99, Quantity: -3},
		{UnitPrice: 5.00, Quantity: 2},
	}

	totals := Compute(items)

	assert.InDelta(t, 10.00, totals.Subtotal, 1e-9)
}

func TestComputeInvariants(t *testing.T) {
	// total == subtotal + tax and tax == subtotal * rate must hold
	// for any mix of quantities and prices.
	carts := [][]LineItem{
		{{UnitPrice: 0.10, Quantity: 3}},
		{{UnitPrice: 1234.56, Quantity: 1}, {UnitPrice: 0.01, Quantity: 99}},
		{{UnitPrice: 7.77, Quantity: 7}, {UnitPrice: 3.33, Quantity: 3}, {UnitPrice: 0, Quantity: 5}},
	}

	for _, cart := range carts {
		totals := Compute(cart)
		require.InDelta(t, totals.Subtotal+totals.Tax, totals.Total, 1e-9)
		require.InDelta(t, totals.Subtotal*TaxRate, totals.Tax, 1e-9)
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 2.35, Round2(2.346), 1e-9)
	assert.InDelta(t, 2.34, Round2(2.344), 1e-9)
	assert.Zero(t, Round2(0))
	assert.InDelta(t, 275.00, Round2(275.004), 1e-9)
}
