package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart/quickcart-golang/internal/models"
)

func productRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", h.GetProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", h.CreateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
	return r
}

func productRows(names ...string) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "slug", "description", "price", "category", "image", "stock_quantity", "created_at", "updated_at",
	})
	for i, name := range names {
		rows.AddRow(int64(i+1), name, "slug-"+name, "desc", 9.99, "Gadgets", "", 5, now, now)
	}
	return rows
}

func TestGetProductsAppliesSearchAndCategoryFilters(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery(`LOWER\(name\) LIKE LOWER\(\?\)`).
		WithArgs("%phone%", "Gadgets").
		WillReturnRows(productRows("Phone Case", "Headphones"))

	req := httptest.NewRequest(http.MethodGet, "/products?search=phone&category=Gadgets", nil)
	w := httptest.NewRecorder()
	productRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductsCategoryAllMeansNoFilter(t *testing.T) {
	h, mock := newMockHandlers(t)

	// No args at all: neither filter applies.
	mock.ExpectQuery(`SELECT .+ FROM products WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(productRows("Mug"))

	req := httptest.NewRequest(http.MethodGet, "/products?category=All", nil)
	w := httptest.NewRecorder()
	productRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductsEmptyCatalogReturnsEmptyList(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery(`FROM products`).WillReturnRows(productRows())

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	productRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"products":[]}`, w.Body.String())
}

func TestGetProductNotFound(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery(`FROM products WHERE id = \?`).
		WithArgs("999").
		WillReturnRows(productRows())

	req := httptest.NewRequest(http.MethodGet, "/products/999", nil)
	w := httptest.NewRecorder()
	productRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProductSlugsTheName(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs("Café Chair", "cafe-chair", "A chair", 49.99, "Furniture", "chair.jpg", 3,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	w := postJSON(t, productRouter(h), "/products", map[string]interface{}{
		"name": "Café Chair", "description": "A chair", "price": 49.99,
		"category": "Furniture", "image": "chair.jpg", "stock": 3,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cafe-chair", resp.Product.Slug)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRequiresPositivePrice(t *testing.T) {
	h, mock := newMockHandlers(t)

	w := postJSON(t, productRouter(h), "/products", map[string]interface{}{
		"name": "Freebie", "price": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductNotFound(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectExec(`DELETE FROM products WHERE id = \?`).
		WithArgs("999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/products/999", nil)
	w := httptest.NewRecorder()
	productRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProductRemoves(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectExec(`DELETE FROM products WHERE id = \?`).
		WithArgs("11").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/products/11", nil)
	w := httptest.NewRecorder()
	productRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
