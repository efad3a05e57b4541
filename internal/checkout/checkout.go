package checkout

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/quickcart/quickcart-golang/internal/client"
	"github.com/quickcart/quickcart-golang/internal/models"
	"github.com/quickcart/quickcart-golang/internal/pricing"
	"github.com/quickcart/quickcart-golang/internal/session"
)

// Validation failures that block a submission before any network call.
var (
	ErrEmptyCart       = errors.New("checkout: cart is empty")
	ErrMissingShipping = errors.New("checkout: full name, address and phone are all required")
)

// Flow orchestrates a checkout: validate locally, submit to the
// server, then reconcile the session store against the response.
type Flow struct {
	Store *session.Store
	API   *client.Client
}

// Preview computes the totals shown on the checkout page. Display
// only; the server recomputes its own numbers on submission.
func (f *Flow) Preview() pricing.Totals {
	return pricing.Compute(cartLineItems(f.Store.Cart()))
}

// Submit places the order.
//
// On success the cart is emptied and the order-history slot is
// replaced with the server-confirmed state. On any failure, local
// state is left exactly as it was: the user can fix the problem and
// resubmit the same cart.
func (f *Flow) Submit(shipping client.ShippingAddressRequest) (*models.Order, error) {
	cart := f.Store.Cart()

	// 1. --- Local Validation (no network on failure) ---
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(shipping.FullName) == "" ||
		strings.TrimSpace(shipping.Address) == "" ||
		strings.TrimSpace(shipping.Phone) == "" {
		return nil, ErrMissingShipping
	}

	// 2. --- Build the Submission ---
	totals := pricing.Compute(cartLineItems(cart))

	items := make([]client.OrderItemRequest, 0, len(cart))
	for _, line := range cart {
		items = append(items, client.OrderItemRequest{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	// The key is minted once per cart and survives failed attempts, so
	// submitting the same cart twice (double click, retry after a
	// network error) replays the first order instead of creating a
	// second one. Any cart change discards it.
	key := f.Store.CheckoutKey()
	if key == "" {
		key = uuid.NewString()
		f.Store.SetCheckoutKey(key)
	}

	req := client.CreateOrderRequest{
		Items:           items,
		ShippingAddress: shipping,
		ItemsPrice:      totals.Subtotal,
		TaxPrice:        totals.Tax,
		ShippingPrice:   0,
		TotalPrice:      totals.Total,
		IdempotencyKey:  key,
	}

	// 3. --- Submit ---
	order, err := f.API.CreateOrder(req)
	if err != nil {
		return nil, err
	}

	// 4. --- Reconcile Local State ---
	// The order exists server-side now, so the cart goes regardless of
	// how the history refresh fares.
	f.Store.ClearCart()

	if orders, err := f.API.MyOrders(); err == nil {
		f.Store.SetOrders(orders)
	} else {
		f.Store.SetOrders(append(f.Store.Orders(), *order))
	}

	return order, nil
}

func cartLineItems(cart []models.CartItem) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, pricing.LineItem{
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}
