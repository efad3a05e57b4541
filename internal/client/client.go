package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/quickcart/quickcart-golang/internal/models"
)

// Client talks to the QuickCart API. Once a token is set it rides
// along on every request as an Authorization: Bearer header.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

// New returns a client for the given API base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token for subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the currently installed bearer token ("" when none).
func (c *Client) Token() string { return c.token }

// ClearToken forgets the bearer token.
func (c *Client) ClearToken() { c.token = "" }

// APIError is a non-2xx response from the server, carrying the HTTP
// status and the server's error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// do runs one JSON round-trip. A nil body sends no payload; a non-nil
// out receives the decoded response body.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

//
// --- Auth ---
//

// AuthResult is what register and login hand back.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account and returns the issued token.
func (c *Client) Register(name, email, password string) (*AuthResult, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var result AuthResult
	if err := c.do(http.MethodPost, "/auth/register", payload, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Login authenticates and returns the issued token.
func (c *Client) Login(email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(http.MethodPost, "/auth/login", payload, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Me verifies the stored token against the server and returns the
// current account.
func (c *Client) Me() (*models.User, error) {
	var result struct {
		User models.User `json:"user"`
	}
	if err := c.do(http.MethodGet, "/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

//
// --- Catalog ---
//

// ListProducts fetches the catalog, optionally filtered by a name
// substring and/or a category ("" or "All" means every category).
func (c *Client) ListProducts(search, category string) ([]models.Product, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if category != "" {
		query.Set("category", category)
	}
	path := "/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Products, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(id int64) (*models.Product, error) {
	var result struct {
		Product models.Product `json:"product"`
	}
	if err := c.do(http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result.Product, nil
}

//
// --- Orders ---
//

// OrderItemRequest is one submitted cart line.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ShippingAddressRequest is the checkout form payload.
type ShippingAddressRequest struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone"`
}

// CreateOrderRequest is the full checkout submission. The price fields
// are the client's preview; the server recomputes and stores its own.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
	IdempotencyKey  string                 `json:"idempotencyKey,omitempty"`
}

// CreateOrder submits a checkout and returns the persisted order with
// the server's authoritative totals.
func (c *Client) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	var result struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(http.MethodPost, "/orders", req, &result); err != nil {
		return nil, err
	}
	return &result.Order, nil
}

// MyOrders lists the caller's orders, newest first.
func (c *Client) MyOrders() ([]models.Order, error) {
	var result struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(http.MethodGet, "/orders/myorders", nil, &result); err != nil {
		return nil, err
	}
	return result.Orders, nil
}

// GetOrder fetches one order (owner or admin).
func (c *Client) GetOrder(id int64) (*models.Order, error) {
	var result struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result.Order, nil
}
