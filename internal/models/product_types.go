package models

import (
	"time"
)

// Product is the model for the 'products' table.
// Mutated only through the admin endpoints; read-shared by everyone else.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	Image       string  `json:"image" db:"image"`

	StockQuantity int `json:"stock" db:"stock_quantity"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
