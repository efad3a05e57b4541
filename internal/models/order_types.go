package models

import (
	"time"
)

// Order statuses. New orders always start as Pending; later transitions
// happen server-side only, the client never mutates an order.
const (
	OrderStatusPending = "Pending"
)

// ShippingAddress is embedded into the 'orders' row (ship_* columns).
// Only fullName, address and phone are required at checkout; the rest
// are optional extras from the address form.
type ShippingAddress struct {
	FullName   string `json:"fullName" db:"ship_full_name"`
	Address    string `json:"address" db:"ship_address"`
	City       string `json:"city" db:"ship_city"`
	PostalCode string `json:"postalCode" db:"ship_postal_code"`
	Country    string `json:"country" db:"ship_country"`
	Phone      string `json:"phone" db:"ship_phone"`
}

// Order is the model for the 'orders' table.
// The stored prices are always the server's own calculation over the
// snapshotted items, never whatever the client claimed they were.
type Order struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"userId" db:"user_id"`
	Status string `json:"status" db:"status"`

	// Populated on single-order fetches; listings skip the snapshots
	// and omit the field entirely.
	Items           []OrderItem     `json:"items,omitempty" db:"-"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`

	ItemsPrice    float64 `json:"itemsPrice" db:"items_price"`
	TaxPrice      float64 `json:"taxPrice" db:"tax_price"`
	ShippingPrice float64 `json:"shippingPrice" db:"shipping_price"`
	TotalPrice    float64 `json:"totalPrice" db:"total_price"`

	// Buyer info, populated on the admin listing only.
	UserName  string `json:"userName,omitempty" db:"-"`
	UserEmail string `json:"userEmail,omitempty" db:"-"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table.
// Name, price and image are copied from the product at order time so
// later catalog edits cannot rewrite history.
type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"orderId" db:"order_id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Name      string  `json:"name" db:"name"`
	Price     float64 `json:"price" db:"price"` // Unit price at the time of purchase
	Quantity  int     `json:"quantity" db:"quantity"`
	Image     string  `json:"image" db:"image"`
}
