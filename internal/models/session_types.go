package models

// Client-session types. Cart and wishlist never touch the server; they
// live in the session store and only leave the device as an order
// submission payload.

// CartItem is one line in the client-held cart: a product snapshot plus
// a quantity. Quantity is always >= 1 while the item exists; dropping
// to zero removes the line entirely.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// WishlistEntry is a bare product reference. At most one entry per
// product id.
type WishlistEntry struct {
	Product Product `json:"product"`
}
