package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atrangi/internal/app"
	"atrangi/internal/ratelimit"
	"atrangi/internal/store"
	"atrangi/internal/util"
	"atrangi/pkg/auth"
	"atrangi/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	RedisAddr                string
	RedisPassword            string
	SignupRateLimitPerMinute int
	LoginRateLimitPerMinute  int
	TrustedProxyCIDRs        []string
}

// Server exposes the storefront REST endpoints.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	signupLimiter  *ratelimit.FixedWindowLimiter
	loginLimiter   *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "atrangi:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	signupLimiter, err := newLimiter("signup", signupLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		signupLimiter:  signupLimiter,
		loginLimiter:   loginLimiter,
		trustedProxies: trusted,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth & account
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/google", s.handleGoogle)
	s.mux.Handle("/api/auth/me", s.authenticated(s.handleMe))
	s.mux.Handle("/api/auth/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/api/auth/sync", s.authenticated(s.handleSync))

	// catalog
	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.HandleFunc("/api/products/", s.handleProductSubtree)
	s.mux.HandleFunc("/api/artists", s.handleArtists)
	s.mux.HandleFunc("/api/artists/", s.handleArtistByID)

	// orders
	s.mux.Handle("/api/orders", s.authenticated(s.handleOrders))
	s.mux.Handle("/api/orders/my-orders", s.authenticated(s.handleMyOrders))
	s.mux.Handle("/api/orders/", s.authenticated(s.handleOrderByID))

	// commissions
	s.mux.Handle("/api/commissions", s.authenticated(s.handleCommissions))
	s.mux.Handle("/api/commissions/my-commissions", s.authenticated(s.handleMyCommissions))
	s.mux.Handle("/api/commissions/admin", s.requireRoles(auth.ActionCommissionMod, s.handleAllCommissions))
	s.mux.Handle("/api/commissions/", s.requireRoles(auth.ActionCommissionMod, s.handleCommissionByID))

	// reviews
	s.mux.HandleFunc("/api/reviews", s.handleReviews)
	s.mux.HandleFunc("/api/reviews/", s.handleReviewsByProduct)

	// admin
	s.mux.Handle("/api/users", s.requireRoles(auth.ActionUserAdmin, s.handleUsers))
	s.mux.Handle("/api/users/", s.requireRoles(auth.ActionUserAdmin, s.handleUserRole))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "api.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) requireRoles(action auth.Action, next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "api.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !auth.Allowed(user.Role, action) {
			s.audit(r, "api.authorize", "fail", "user_id", user.ID, "reason", "forbidden", "action", string(action))
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

// auth handlers

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "auth.signup", "rate_limited")
		return
	}
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Name, req.Email, req.Password)
	if err != nil {
		s.audit(r, "auth.signup", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "auth.signup", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "auth.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "auth.login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "auth.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "auth.google", "rate_limited")
		return
	}
	var req googleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.GoogleSignIn(req.Credential)
	if err != nil {
		s.audit(r, "auth.google", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "auth.google", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := s.app.UpdateProfile(user.ID, app.ProfileUpdate{
		Name:      req.Name,
		Avatar:    req.Avatar,
		Addresses: req.Addresses,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var req syncRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.Sync(user.ID, req.Cart, req.Wishlist); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// catalog handlers

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		page, err := s.app.ListProducts(productFilterFromQuery(r))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	case http.MethodPost:
		s.requireRoles(auth.ActionProductCreate, s.handleCreateProduct).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request, user domain.User) {
	var product domain.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := s.app.CreateProduct(product)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "catalog.product.create", "success", "user_id", user.ID, "product_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleProductSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/")
	switch {
	case strings.HasPrefix(rest, "related/"):
		s.handleRelatedProducts(w, r, strings.TrimPrefix(rest, "related/"))
	case strings.HasPrefix(rest, "artist/"):
		s.handleProductsByArtist(w, r, strings.TrimPrefix(rest, "artist/"))
	default:
		s.handleProductByID(w, r, rest)
	}
}

func (s *Server) handleRelatedProducts(w http.ResponseWriter, r *http.Request, category string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	currentID, _ := strconv.ParseInt(r.URL.Query().Get("currentId"), 10, 64)
	related, err := s.app.RelatedProducts(category, currentID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (s *Server) handleProductsByArtist(w http.ResponseWriter, r *http.Request, artist string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	products, err := s.app.ProductsByArtist(artist)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		product, err := s.app.GetProduct(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	case http.MethodPut:
		s.requireRoles(auth.ActionProductUpdate, func(w http.ResponseWriter, r *http.Request, user domain.User) {
			var updates map[string]any
			if err := decodeBody(r, &updates); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			product, err := s.app.UpdateProduct(user, id, updates)
			if err != nil {
				writeAppError(w, err)
				return
			}
			s.audit(r, "catalog.product.update", "success", "user_id", user.ID, "product_id", id)
			writeJSON(w, http.StatusOK, product)
		}).ServeHTTP(w, r)
	case http.MethodDelete:
		s.requireRoles(auth.ActionProductDelete, func(w http.ResponseWriter, r *http.Request, user domain.User) {
			if err := s.app.DeleteProduct(id); err != nil {
				writeAppError(w, err)
				return
			}
			s.audit(r, "catalog.product.delete", "success", "user_id", user.ID, "product_id", id)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
		}).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		artists, err := s.app.ListArtists()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, artists)
	case http.MethodPost:
		s.requireRoles(auth.ActionArtistCreate, func(w http.ResponseWriter, r *http.Request, user domain.User) {
			var artist domain.Artist
			if err := decodeBody(r, &artist); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			created, err := s.app.CreateArtist(artist)
			if err != nil {
				writeAppError(w, err)
				return
			}
			s.audit(r, "catalog.artist.create", "success", "user_id", user.ID, "artist_id", created.ID)
			writeJSON(w, http.StatusCreated, created)
		}).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleArtistByID(w http.ResponseWriter, r *http.Request) {
	rawID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/artists/"), "/")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Artist not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		artist, err := s.app.GetArtist(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, artist)
	case http.MethodPut:
		s.requireRoles(auth.ActionArtistUpdate, func(w http.ResponseWriter, r *http.Request, user domain.User) {
			var updates map[string]any
			if err := decodeBody(r, &updates); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			artist, err := s.app.UpdateArtist(id, updates)
			if err != nil {
				writeAppError(w, err)
				return
			}
			s.audit(r, "catalog.artist.update", "success", "user_id", user.ID, "artist_id", id)
			writeJSON(w, http.StatusOK, artist)
		}).ServeHTTP(w, r)
	case http.MethodDelete:
		s.requireRoles(auth.ActionArtistDelete, func(w http.ResponseWriter, r *http.Request, user domain.User) {
			if err := s.app.DeleteArtist(id); err != nil {
				writeAppError(w, err)
				return
			}
			s.audit(r, "catalog.artist.delete", "success", "user_id", user.ID, "artist_id", id)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Artist deleted successfully"})
		}).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

// order handlers

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var input app.OrderInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		order, err := s.app.CreateOrder(r.Context(), user, input)
		if err != nil {
			s.audit(r, "order.create", "fail", "user_id", user.ID, "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "order.create", "success", "user_id", user.ID, "order_id", order.ID)
		writeJSON(w, http.StatusCreated, order)
	case http.MethodGet:
		if !auth.Allowed(user.Role, auth.ActionOrderViewAll) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		orders, err := s.app.AllOrders()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	orders, err := s.app.MyOrders(user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleOrderByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders/"), "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		order, err := s.app.GetOrder(user, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	case http.MethodPatch:
		if !auth.Allowed(user.Role, auth.ActionOrderUpdate) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		var req statusRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		order, err := s.app.UpdateOrderStatus(id, req.Status)
		if err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "order.status.update", "success", "user_id", user.ID, "order_id", id, "status", req.Status)
		writeJSON(w, http.StatusOK, order)
	default:
		methodNotAllowed(w)
	}
}

// commission handlers

func (s *Server) handleCommissions(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var input app.CommissionInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	commission, err := s.app.CreateCommission(user, input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, commission)
}

func (s *Server) handleMyCommissions(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	commissions, err := s.app.MyCommissions(user)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commissions)
}

func (s *Server) handleAllCommissions(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	commissions, err := s.app.AllCommissions()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commissions)
}

func (s *Server) handleCommissionByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/commissions/"), "/")
	if id == "" || id == "my-commissions" || id == "admin" {
		writeError(w, http.StatusNotFound, "Commission not found")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.UpdateCommissionStatus(id, req.Status); err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "commission.status.update", "success", "user_id", user.ID, "commission_id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

// review handlers

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
		var input app.ReviewInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		review, err := s.app.CreateReview(user, input)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, review)
	}).ServeHTTP(w, r)
}

func (s *Server) handleReviewsByProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rawID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/reviews/"), "/")
	productID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	reviews, err := s.app.ReviewsForProduct(productID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// admin user handlers

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	users, err := s.app.ListUsers()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserRole(w http.ResponseWriter, r *http.Request, admin domain.User) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "role" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req roleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := s.app.UpdateUserRole(parts[0], req.Role)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "user.role.update", "success", "user_id", admin.ID, "target_id", updated.ID, "role", req.Role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Role updated successfully", "role": req.Role})
}

// request/response shapes

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Credential string `json:"credential"`
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type profileRequest struct {
	Name      *string           `json:"name"`
	Avatar    *string           `json:"avatar"`
	Addresses *[]domain.Address `json:"addresses"`
}

type syncRequest struct {
	Cart     *[]domain.CartItem `json:"cart"`
	Wishlist *[]domain.Product  `json:"wishlist"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// helpers

func productFilterFromQuery(r *http.Request) store.ProductFilter {
	q := r.URL.Query()
	filter := store.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Artist:   q.Get("artist"),
		Sort:     q.Get("sort"),
	}
	if raw := q.Get("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := q.Get("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}
	if raw := q.Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.Page = v
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.Limit = v
		}
	}
	return filter
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps domain errors onto the HTTP error taxonomy. Domain
// errors surface to the caller verbatim; everything else is an opaque 500.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case app.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case app.IsInvalidState(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, auth.ErrMarketingFeaturedOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrUserExists),
		errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrSignupFieldsRequired),
		errors.Is(err, app.ErrLoginFieldsRequired),
		errors.Is(err, app.ErrInvalidRole),
		errors.Is(err, app.ErrCannotDeleteSold),
		errors.Is(err, app.ErrStatusRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}
