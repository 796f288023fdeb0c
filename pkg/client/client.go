package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"atrangi/pkg/domain"
)

// Client calls the storefront API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents an API error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs an API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ProductPage mirrors the catalog list response.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ProductQuery is the combinable catalog filter; zero values are omitted.
type ProductQuery struct {
	Search   string
	Category string
	Artist   string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Page     int
	Limit    int
}

// OrderRequest is the checkout payload.
type OrderRequest struct {
	Items           []domain.CartItem      `json:"items"`
	Total           float64                `json:"total"`
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
	PaymentMethod   string                 `json:"paymentMethod,omitempty"`
}

// CommissionRequest is the commission submission payload.
type CommissionRequest struct {
	Style       string `json:"style"`
	Budget      string `json:"budget"`
	Description string `json:"description"`
}

// ReviewRequest is the review submission payload.
type ReviewRequest struct {
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

func (c *Client) SignUp(name, email, password string) (domain.User, string, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(http.MethodPost, "/api/auth/signup", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Login(email, password string) (domain.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(http.MethodPost, "/api/auth/login", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) GoogleSignIn(credential string) (domain.User, string, error) {
	payload := map[string]string{"credential": credential}
	var resp authResponse
	if err := c.doJSON(http.MethodPost, "/api/auth/google", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Me(token string) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SyncUser pushes full cart/wishlist snapshots; nil fields are left untouched
// server-side.
func (c *Client) SyncUser(token string, cart *[]domain.CartItem, wishlist *[]domain.Product) error {
	payload := map[string]any{}
	if cart != nil {
		payload["cart"] = *cart
	}
	if wishlist != nil {
		payload["wishlist"] = *wishlist
	}
	return c.doJSON(http.MethodPut, "/api/auth/sync", token, payload, nil)
}

func (c *Client) ListProducts(query ProductQuery) (ProductPage, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.Artist != "" {
		params.Set("artist", query.Artist)
	}
	if query.MinPrice > 0 {
		params.Set("minPrice", strconv.FormatFloat(query.MinPrice, 'f', -1, 64))
	}
	if query.MaxPrice > 0 {
		params.Set("maxPrice", strconv.FormatFloat(query.MaxPrice, 'f', -1, 64))
	}
	if query.Sort != "" {
		params.Set("sort", query.Sort)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	path := "/api/products"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page ProductPage
	if err := c.doJSON(http.MethodGet, path, "", nil, &page); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}

func (c *Client) GetProduct(id int64) (domain.Product, error) {
	var product domain.Product
	path := fmt.Sprintf("/api/products/%d", id)
	if err := c.doJSON(http.MethodGet, path, "", nil, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (c *Client) RelatedProducts(category string, currentID int64) ([]domain.Product, error) {
	path := fmt.Sprintf("/api/products/related/%s?currentId=%d", url.PathEscape(category), currentID)
	var products []domain.Product
	if err := c.doJSON(http.MethodGet, path, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ListArtists() ([]domain.Artist, error) {
	var artists []domain.Artist
	if err := c.doJSON(http.MethodGet, "/api/artists", "", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

func (c *Client) CreateOrder(token string, req OrderRequest) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(http.MethodPost, "/api/orders", token, req, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) MyOrders(token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.doJSON(http.MethodGet, "/api/orders/my-orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) CreateCommission(token string, req CommissionRequest) (domain.Commission, error) {
	var commission domain.Commission
	if err := c.doJSON(http.MethodPost, "/api/commissions", token, req, &commission); err != nil {
		return domain.Commission{}, err
	}
	return commission, nil
}

func (c *Client) MyCommissions(token string) ([]domain.Commission, error) {
	var commissions []domain.Commission
	if err := c.doJSON(http.MethodGet, "/api/commissions/my-commissions", token, nil, &commissions); err != nil {
		return nil, err
	}
	return commissions, nil
}

func (c *Client) CreateReview(token string, req ReviewRequest) (domain.Review, error) {
	var review domain.Review
	if err := c.doJSON(http.MethodPost, "/api/reviews", token, req, &review); err != nil {
		return domain.Review{}, err
	}
	return review, nil
}

func (c *Client) ReviewsForProduct(productID int64) ([]domain.Review, error) {
	path := fmt.Sprintf("/api/reviews/%d", productID)
	var reviews []domain.Review
	if err := c.doJSON(http.MethodGet, path, "", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) doJSON(method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}
