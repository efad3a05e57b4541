package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/quickcart/quickcart-golang/internal/models"
	"github.com/quickcart/quickcart-golang/internal/pricing"
)

//
// --- Order Handlers ---
//

// Shipping is free across the storefront.
const shippingPrice = 0.0

// OrderItemInput is one line of the submitted cart snapshot. Only the
// product reference and quantity matter; the server re-reads the price.
type OrderItemInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// ShippingAddressInput carries the checkout form. Full name, address
// and phone are the required trio; the rest is optional.
type ShippingAddressInput struct {
	FullName   string `json:"fullName" binding:"required"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone" binding:"required"`
}

// CreateOrderInput is the checkout payload. The client-side totals are
// accepted for cross-checking but the persisted prices always come from
// the server's own calculation over stored product prices.
type CreateOrderInput struct {
	Items           []OrderItemInput     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress" binding:"required"`

	ItemsPrice    float64 `json:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice"`

	// Optional client-generated UUID. Submitting the same key twice
	// returns the first order instead of creating a duplicate.
	IdempotencyKey string `json:"idempotencyKey" binding:"omitempty,uuid4"`
}

// CreateOrder is the handler for POST /orders.
// Everything happens in one serializable transaction: price lookup,
// stock check, order insert, item snapshot, stock decrement. Either the
// whole order lands or nothing does.
func (h *Handlers) CreateOrder(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Bind & Validate JSON ---
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Replay Check (Double-Submit Guard) ---
	if input.IdempotencyKey != "" {
		var existingID int64
		err := h.DB.QueryRow(
			"SELECT id FROM orders WHERE idempotency_key = ? AND user_id = ?",
			input.IdempotencyKey, userID,
		).Scan(&existingID)
		if err == nil {
			h.respondWithOrder(c, http.StatusOK, existingID)
			return
		}
		if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	// 4. --- Begin Transaction ---
	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 5. --- Resolve Each Item Against the Catalog ---
	// The stored product price is authoritative. The rows are locked so
	// a concurrent admin edit or competing checkout cannot slip between
	// the stock check and the decrement.
	//
	// Lines referencing the same product are merged first, so the stock
	// check always sees the order's aggregate demand for that product.
	merged := make([]OrderItemInput, 0, len(input.Items))
	lineIndex := make(map[int64]int, len(input.Items))
	for _, item := range input.Items {
		if i, ok := lineIndex[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		lineIndex[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	var lineItems []pricing.LineItem
	var snapshots []models.OrderItem

	for _, item := range merged {
		var p models.Product
		err := tx.QueryRow(
			"SELECT id, name, price, image, stock_quantity FROM products WHERE id = ? FOR UPDATE",
			item.ProductID,
		).Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.StockQuantity)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown product ID %d", item.ProductID)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up product"})
			return
		}

		if p.StockQuantity < item.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Not enough stock for product ID %d", item.ProductID)})
			return
		}

		lineItems = append(lineItems, pricing.LineItem{UnitPrice: p.Price, Quantity: item.Quantity})
		snapshots = append(snapshots, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  item.Quantity,
			Image:     p.Image,
		})
	}

	// 6. --- Server-Side Pricing (Authoritative) ---
	totals := pricing.Compute(lineItems)
	totalPrice := totals.Total + shippingPrice

	// Flag clients whose preview drifted from the stored prices. The
	// order still goes through at the server's numbers.
	if math.Abs(input.TotalPrice-totalPrice) > 0.01 {
		log.Printf("Pricing mismatch on checkout for user %d: client sent %.2f, server computed %.2f",
			userID, input.TotalPrice, totalPrice)
	}

	// 7. --- Insert the Order ---
	now := time.Now()
	var idempotencyKey interface{}
	if input.IdempotencyKey != "" {
		idempotencyKey = input.IdempotencyKey
	}

	result, err := tx.Exec(`
		INSERT INTO orders (user_id, status, items_price, tax_price, shipping_price, total_price,
			ship_full_name, ship_address, ship_city, ship_postal_code, ship_country, ship_phone,
			idempotency_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, models.OrderStatusPending, totals.Subtotal, totals.Tax, shippingPrice, totalPrice,
		input.ShippingAddress.FullName, input.ShippingAddress.Address, input.ShippingAddress.City,
		input.ShippingAddress.PostalCode, input.ShippingAddress.Country, input.ShippingAddress.Phone,
		idempotencyKey, now, now)
	if err != nil {
		// Two submissions of the same key raced past the check in step 3;
		// the unique index caught the second one. Return the winner.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 && input.IdempotencyKey != "" {
			var existingID int64
			if scanErr := h.DB.QueryRow(
				"SELECT id FROM orders WHERE idempotency_key = ? AND user_id = ?",
				input.IdempotencyKey, userID,
			).Scan(&existingID); scanErr == nil {
				h.respondWithOrder(c, http.StatusOK, existingID)
				return
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// 8. --- Snapshot Items & Deduct Stock ---
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity, image)
		VALUES (?, ?, ?, ?, ?, ?)`
	stockQuery := "UPDATE products SET stock_quantity = stock_quantity - ? WHERE id = ?"

	for _, snap := range snapshots {
		if _, err := tx.Exec(itemQuery, orderID, snap.ProductID, snap.Name, snap.Price, snap.Quantity, snap.Image); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}
		if _, err := tx.Exec(stockQuery, snap.Quantity, snap.ProductID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct stock"})
			return
		}
	}

	// 9. --- Commit Transaction ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	// 10. --- Return the Created Order ---
	h.respondWithOrder(c, http.StatusCreated, orderID)
}

const orderColumns = `id, user_id, status, items_price, tax_price, shipping_price, total_price,
	ship_full_name, ship_address, ship_city, ship_postal_code, ship_country, ship_phone,
	created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Address, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country, &o.ShippingAddress.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// fetchOrderItems loads the snapshotted line items for one order.
func (h *Handlers) fetchOrderItems(orderID int64) ([]models.OrderItem, error) {
	rows, err := h.DB.Query(`
		SELECT id, order_id, product_id, name, price, quantity, image
		FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// respondWithOrder loads one order with its items and writes it out.
func (h *Handlers) respondWithOrder(c *gin.Context, status int, orderID int64) {
	order, err := scanOrder(h.DB.QueryRow(
		"SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.fetchOrderItems(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	order.Items = items

	c.JSON(status, gin.H{"order": order})
}

// GetMyOrders is the handler for GET /orders/myorders.
// Listings skip the item snapshots; GET /orders/:id has them.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	rows, err := h.DB.Query(
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetAllOrders is the handler for GET /orders (admin only).
// Includes the buyer's name and email for the back-office table.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	query := `
		SELECT o.id, o.user_id, o.status, o.items_price, o.tax_price, o.shipping_price, o.total_price,
			o.ship_full_name, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_country, o.ship_phone,
			o.created_at, o.updated_at, u.name, u.email
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
			&o.ShippingAddress.FullName, &o.ShippingAddress.Address, &o.ShippingAddress.City,
			&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country, &o.ShippingAddress.Phone,
			&o.CreatedAt, &o.UpdatedAt, &o.UserName, &o.UserEmail,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder is the handler for GET /orders/:id.
// The owner sees their own order; an admin sees any order; everyone
// else gets 403 (they are authenticated, just not authorized).
func (h *Handlers) GetOrder(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	orderID := c.Param("id")

	order, err := scanOrder(h.DB.QueryRow(
		"SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if order.UserID != userID {
		role, err := queryCallerRole(h.DB, userID)
		if err != nil || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
			return
		}
	}

	items, err := h.fetchOrderItems(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	order.Items = items

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// queryCallerRole fetches the caller's role for the owner-or-admin check.
func queryCallerRole(db *sql.DB, userID int64) (string, error) {
	var role string
	err := db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	return role, err
}
