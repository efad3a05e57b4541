package session

import (
	"encoding/json"
	"log"

	"github.com/quickcart/quickcart-golang/internal/models"
)

// The four named slots every client session keeps.
const (
	slotCart     = "cart"
	slotWishlist = "wishlist"
	slotUser     = "user"
	slotOrders   = "orders"
	slotCheckout = "checkout"
)

// Credentials is the content of the user slot: the bearer token plus
// the last server-confirmed view of the account.
type Credentials struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Store is the client's session state: cart, wishlist, user and order
// history, mirrored into durable storage on every mutation.
//
// The in-memory copy is optimistic; whenever a server round-trip
// succeeds the response overwrites the matching slot. A Store belongs
// to one single-threaded client flow and is not safe for concurrent
// use, same as the localStorage it stands in for.
type Store struct {
	kv KV

	cart     []models.CartItem
	wishlist []models.WishlistEntry
	creds    *Credentials
	orders   []models.Order

	// Pending checkout submission key. Scoped to the current cart
	// contents: any cart mutation invalidates it.
	checkoutKey string
}

// Open hydrates a Store from durable storage. Hydration is
// best-effort: a missing or unreadable slot logs a warning and starts
// empty, it never fails the session.
func Open(kv KV) *Store {
	s := &Store{kv: kv}

	s.hydrate(slotCart, &s.cart)
	s.hydrate(slotWishlist, &s.wishlist)
	s.hydrate(slotOrders, &s.orders)
	s.hydrate(slotCheckout, &s.checkoutKey)

	var creds Credentials
	if s.hydrate(slotUser, &creds) && creds.Token != "" {
		s.creds = &creds
	}

	return s
}

// hydrate decodes one slot, reporting whether anything valid was
// loaded. Malformed data is logged rather than silently swallowed, but
// the caller still gets a clean default.
func (s *Store) hydrate(slot string, into interface{}) bool {
	data, ok := s.kv.Get(slot)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		log.Printf("WARNING: Discarding malformed %q slot: %v", slot, err)
		return false
	}
	return true
}

// persist writes one slot through to durable storage. Persistence
// failures are logged, not returned; the in-memory state stays live
// for the rest of the session either way.
func (s *Store) persist(slot string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("WARNING: Failed to encode %q slot: %v", slot, err)
		return
	}
	if err := s.kv.Set(slot, data); err != nil {
		log.Printf("WARNING: Failed to persist %q slot: %v", slot, err)
	}
}

//
// --- Cart ---
//

// Cart returns a copy of the cart lines.
func (s *Store) Cart() []models.CartItem {
	out := make([]models.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// AddToCart puts a product in the cart. Adding a product that is
// already there bumps its quantity instead of duplicating the line.
// Quantities of zero or less are ignored.
func (s *Store) AddToCart(product models.Product, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range s.cart {
		if s.cart[i].Product.ID == product.ID {
			s.cart[i].Quantity += quantity
			s.cartChanged()
			return
		}
	}
	s.cart = append(s.cart, models.CartItem{Product: product, Quantity: quantity})
	s.cartChanged()
}

// cartChanged persists the cart and drops any pending checkout key: a
// different cart is a different submission.
func (s *Store) cartChanged() {
	s.persist(slotCart, s.cart)
	if s.checkoutKey != "" {
		s.ClearCheckoutKey()
	}
}

// UpdateQuantity sets the quantity of a cart line. Anything below one
// removes the line entirely; a cart never holds a zero-quantity item.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(productID)
		return
	}
	for i := range s.cart {
		if s.cart[i].Product.ID == productID {
			s.cart[i].Quantity = quantity
			s.cartChanged()
			return
		}
	}
}

// RemoveFromCart drops a line from the cart, no matter its quantity.
func (s *Store) RemoveFromCart(productID int64) {
	for i := range s.cart {
		if s.cart[i].Product.ID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			s.cartChanged()
			return
		}
	}
}

// ClearCart empties the cart wholesale, as after a placed order.
func (s *Store) ClearCart() {
	s.cart = nil
	s.cartChanged()
}

//
// --- Checkout Key ---
//

// CheckoutKey returns the pending submission key for the current cart,
// or "" when none has been minted yet.
func (s *Store) CheckoutKey() string {
	return s.checkoutKey
}

// SetCheckoutKey records the submission key for the current cart so a
// retry reuses it.
func (s *Store) SetCheckoutKey(key string) {
	s.checkoutKey = key
	s.persist(slotCheckout, s.checkoutKey)
}

// ClearCheckoutKey discards the pending submission key.
func (s *Store) ClearCheckoutKey() {
	s.checkoutKey = ""
	s.persist(slotCheckout, s.checkoutKey)
}

//
// --- Wishlist ---
//

// Wishlist returns a copy of the wishlist entries.
func (s *Store) Wishlist() []models.WishlistEntry {
	out := make([]models.WishlistEntry, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

// AddToWishlist saves a product for later. Duplicates are no-ops.
func (s *Store) AddToWishlist(product models.Product) {
	for i := range s.wishlist {
		if s.wishlist[i].Product.ID == product.ID {
			return
		}
	}
	s.wishlist = append(s.wishlist, models.WishlistEntry{Product: product})
	s.persist(slotWishlist, s.wishlist)
}

// RemoveFromWishlist drops an entry.
func (s *Store) RemoveFromWishlist(productID int64) {
	for i := range s.wishlist {
		if s.wishlist[i].Product.ID == productID {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			s.persist(slotWishlist, s.wishlist)
			return
		}
	}
}

//
// --- User ---
//

// Credentials returns the stored token and user, or nil when logged out.
func (s *Store) Credentials() *Credentials {
	return s.creds
}

// SetCredentials records a fresh login or a server-confirmed refresh of
// the account (reconciliation after /auth/me).
func (s *Store) SetCredentials(token string, user models.User) {
	s.creds = &Credentials{Token: token, User: user}
	s.persist(slotUser, s.creds)
}

// ClearCredentials forgets the token, e.g. after a failed verification,
// so later navigation does not retry a known-bad token.
func (s *Store) ClearCredentials() {
	s.creds = nil
	s.persist(slotUser, nil)
}

//
// --- Order History ---
//

// Orders returns a copy of the order-history slot.
func (s *Store) Orders() []models.Order {
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// SetOrders replaces the order-history slot with the server's list.
func (s *Store) SetOrders(orders []models.Order) {
	s.orders = orders
	s.persist(slotOrders, s.orders)
}
