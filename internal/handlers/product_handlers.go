package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/quickcart/quickcart-golang/internal/models"
)

//
// --- Product Handlers ---
//
// Reads are public; create/update/delete sit behind the admin gate.
//

// ProductInput is the full product record the admin submits.
// Update is a full-record replace: omitted fields become their zero
// values, exactly like the create path.
type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

const productColumns = "id, name, slug, description, price, category, image, stock_quantity, created_at, updated_at"

// GetProducts is the handler for GET /products.
// Supports ?search= (case-insensitive substring on the name) and
// ?category= filters; "All" means no category filter, matching what
// the storefront's category dropdown sends.
func (h *Handlers) GetProducts(c *gin.Context) {
	search := c.Query("search")
	category := c.Query("category")

	query := "SELECT " + productColumns + " FROM products WHERE 1=1"
	args := []interface{}{}

	if search != "" {
		query += " AND LOWER(name) LIKE LOWER(?)"
		args = append(args, "%"+search+"%")
	}
	if category != "" && category != "All" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price,
			&p.Category, &p.Image, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating products"})
		return
	}

	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the handler for GET /products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	var p models.Product
	err := h.DB.QueryRow(
		"SELECT "+productColumns+" FROM products WHERE id = ?", productID,
	).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price,
		&p.Category, &p.Image, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// CreateProduct is the handler for POST /products (admin only).
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO products (name, slug, description, price, category, image, stock_quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Name, slug.Make(input.Name), input.Description, input.Price,
		input.Category, input.Image, input.Stock, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	productID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	product := models.Product{
		ID:            productID,
		Name:          input.Name,
		Slug:          slug.Make(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		Category:      input.Category,
		Image:         input.Image,
		StockQuantity: input.Stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct is the handler for PUT /products/:id (admin only).
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE products
		SET name = ?, slug = ?, description = ?, price = ?, category = ?, image = ?, stock_quantity = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, slug.Make(input.Name), input.Description, input.Price,
		input.Category, input.Image, input.Stock, time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Could also be an update to identical values, but the storefront
		// always sends the edited record, so treat it as missing.
		var exists int64
		if err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&exists); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /products/:id (admin only).
// Permanent; there is no soft delete.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}
