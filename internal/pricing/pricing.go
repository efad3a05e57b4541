package pricing

import "math"

// TaxRate is the flat tax applied to every order (10%).
// The client preview and the server's authoritative calculation
// both use this constant, so the two can never disagree.
const TaxRate = 0.10

// LineItem is the minimal input the calculator needs:
// a unit price and how many units are being bought.
type LineItem struct {
	UnitPrice float64
	Quantity  int
}

// Totals is the result of a pricing calculation.
// Values are kept unrounded internally; call Round2 when
// displaying or persisting a currency amount.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Compute calculates subtotal, tax and total for a list of line items.
// Items with a quantity of zero or less are skipped entirely, they
// should never have been in a cart in the first place.
// An empty list yields all-zero totals.
func Compute(items []LineItem) Totals {
	var subtotal float64
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	tax := subtotal * TaxRate

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// Round2 rounds a currency amount to 2 decimal places.
// Only use this at the edges (JSON responses, receipts); rounding
// per line item would compound the error across a large cart.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
