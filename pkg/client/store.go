package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"atrangi/pkg/domain"
)

// FavoritesCollection is the presentation view over the synced wishlist;
// every other collection is local-only and never pushed to the server.
const FavoritesCollection = "Favorites"

// Collection is a named group of saved pieces.
type Collection struct {
	Name  string           `json:"name"`
	Items []domain.Product `json:"items"`
}

// Message is one entry in the local outbound message log.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the aggregate client state persisted across sessions.
type State struct {
	Cart        []domain.CartItem   `json:"cart"`
	Collections []Collection        `json:"collections"`
	User        *domain.User        `json:"user,omitempty"`
	Token       string              `json:"token,omitempty"`
	Products    []domain.Product    `json:"products"`
	Artists     []domain.Artist     `json:"artists"`
	Orders      []domain.Order      `json:"orders"`
	Commissions []domain.Commission `json:"commissions"`
	Reviews     []domain.Review     `json:"reviews"`
	Messages    []Message           `json:"messages"`
}

func defaultCollections() []Collection {
	return []Collection{
		{Name: FavoritesCollection, Items: []domain.Product{}},
		{Name: "Living Room Ideas", Items: []domain.Product{}},
	}
}

// Store is the client state aggregator: the single source of truth for a
// storefront UI. Mutations apply locally first; while a session is active
// each cart/favorites mutation fires an asynchronous full-snapshot sync whose
// failure is logged, never surfaced to the mutation caller.
type Store struct {
	mu    sync.Mutex
	state State
	api   *Client
	path  string
	syncs sync.WaitGroup
}

// NewStore builds an aggregator backed by the API client, restoring any state
// persisted at path. Empty path disables persistence.
func NewStore(api *Client, path string) *Store {
	s := &Store{
		api:  api,
		path: path,
		state: State{
			Cart:        []domain.CartItem{},
			Collections: defaultCollections(),
		},
	}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var saved State
			if err := json.Unmarshal(data, &saved); err == nil {
				if saved.Cart == nil {
					saved.Cart = []domain.CartItem{}
				}
				if len(saved.Collections) == 0 {
					saved.Collections = defaultCollections()
				}
				s.state = saved
			}
		}
	}
	return s
}

// Bootstrap loads the shared catalog snapshot (products and artists)
// concurrently.
func (s *Store) Bootstrap(ctx context.Context) error {
	var (
		page    ProductPage
		artists []domain.Artist
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.api.ListProducts(ProductQuery{Limit: 100})
		return err
	})
	g.Go(func() error {
		var err error
		artists, err = s.api.ListArtists()
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Products = page.Products
	s.state.Artists = artists
	s.mu.Unlock()
	s.persist()
	return nil
}

// Login installs the authenticated session and merges, rather than replaces,
// local anonymous state with the server snapshots. The merged cart and
// wishlist are pushed straight back so the server copy stays authoritative.
func (s *Store) Login(user domain.User, token string) {
	s.mu.Lock()
	mergedCart := MergeCarts(user.Cart, s.state.Cart)
	mergedWishlist := MergeWishlists(user.Wishlist, s.favoritesLocked())

	s.state.User = &user
	s.state.Token = token
	s.state.Cart = mergedCart
	s.setFavoritesLocked(mergedWishlist)
	s.mu.Unlock()

	s.syncAsync(&mergedCart, &mergedWishlist)
	s.persist()
}

// Logout clears the session and resets cart and collections to the seeded
// defaults. Nothing is pushed to the server.
func (s *Store) Logout() {
	s.mu.Lock()
	s.state.User = nil
	s.state.Token = ""
	s.state.Cart = []domain.CartItem{}
	s.state.Collections = defaultCollections()
	s.mu.Unlock()
	s.persist()
}

// AddToCart adds a product snapshot, summing quantity when it is already in
// the cart.
func (s *Store) AddToCart(product domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	found := false
	for i := range s.state.Cart {
		if s.state.Cart[i].ID == product.ID {
			s.state.Cart[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.state.Cart = append(s.state.Cart, domain.CartItem{Product: product, Quantity: quantity})
	}
	cart := cloneCart(s.state.Cart)
	s.mu.Unlock()

	s.syncAsync(&cart, nil)
	s.persist()
}

// RemoveFromCart drops a line item by product id.
func (s *Store) RemoveFromCart(productID int64) {
	s.mu.Lock()
	filtered := s.state.Cart[:0]
	for _, item := range s.state.Cart {
		if item.ID != productID {
			filtered = append(filtered, item)
		}
	}
	s.state.Cart = filtered
	cart := cloneCart(s.state.Cart)
	s.mu.Unlock()

	s.syncAsync(&cart, nil)
	s.persist()
}

// UpdateQuantity sets the quantity of an existing line item.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	s.mu.Lock()
	for i := range s.state.Cart {
		if s.state.Cart[i].ID == productID {
			s.state.Cart[i].Quantity = quantity
			break
		}
	}
	cart := cloneCart(s.state.Cart)
	s.mu.Unlock()

	s.syncAsync(&cart, nil)
	s.persist()
}

// ClearCart empties the cart, typically after checkout.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.state.Cart = []domain.CartItem{}
	cart := []domain.CartItem{}
	s.mu.Unlock()

	s.syncAsync(&cart, nil)
	s.persist()
}

// ToggleFavorite adds or removes a piece from the Favorites collection and
// syncs the resulting wishlist.
func (s *Store) ToggleFavorite(product domain.Product) {
	s.mu.Lock()
	favorites := s.favoritesLocked()
	removed := false
	next := favorites[:0]
	for _, p := range favorites {
		if p.ID == product.ID {
			removed = true
			continue
		}
		next = append(next, p)
	}
	if !removed {
		next = append(next, product)
	}
	wishlist := make([]domain.Product, len(next))
	copy(wishlist, next)
	s.setFavoritesLocked(wishlist)
	s.mu.Unlock()

	s.syncAsync(nil, &wishlist)
	s.persist()
}

// CreateCollection adds a new local-only named collection.
func (s *Store) CreateCollection(name string) {
	s.mu.Lock()
	for _, c := range s.state.Collections {
		if c.Name == name {
			s.mu.Unlock()
			return
		}
	}
	s.state.Collections = append(s.state.Collections, Collection{Name: name, Items: []domain.Product{}})
	s.mu.Unlock()
	s.persist()
}

// AddToCollection saves a piece into a named collection; duplicates by id are
// ignored. Collections other than Favorites never sync to the server.
func (s *Store) AddToCollection(name string, product domain.Product) {
	s.mu.Lock()
	for i, c := range s.state.Collections {
		if c.Name != name {
			continue
		}
		exists := false
		for _, p := range c.Items {
			if p.ID == product.ID {
				exists = true
				break
			}
		}
		if !exists {
			s.state.Collections[i].Items = append(c.Items, product)
		}
		break
	}
	var wishlist *[]domain.Product
	if name == FavoritesCollection {
		w := s.favoritesLocked()
		wishlist = &w
	}
	s.mu.Unlock()

	if wishlist != nil {
		s.syncAsync(nil, wishlist)
	}
	s.persist()
}

// RemoveFromCollection drops a piece from a named collection.
func (s *Store) RemoveFromCollection(name string, productID int64) {
	s.mu.Lock()
	for i, c := range s.state.Collections {
		if c.Name != name {
			continue
		}
		filtered := c.Items[:0]
		for _, p := range c.Items {
			if p.ID != productID {
				filtered = append(filtered, p)
			}
		}
		s.state.Collections[i].Items = filtered
		break
	}
	var wishlist *[]domain.Product
	if name == FavoritesCollection {
		w := s.favoritesLocked()
		wishlist = &w
	}
	s.mu.Unlock()

	if wishlist != nil {
		s.syncAsync(nil, wishlist)
	}
	s.persist()
}

// AddOrder caches a placed order locally, newest first.
func (s *Store) AddOrder(order domain.Order) {
	s.mu.Lock()
	s.state.Orders = append([]domain.Order{order}, s.state.Orders...)
	s.mu.Unlock()
	s.persist()
}

// AddCommission caches a submitted commission locally, newest first.
func (s *Store) AddCommission(commission domain.Commission) {
	s.mu.Lock()
	s.state.Commissions = append([]domain.Commission{commission}, s.state.Commissions...)
	s.mu.Unlock()
	s.persist()
}

// AddReview caches a posted review locally, newest first.
func (s *Store) AddReview(review domain.Review) {
	s.mu.Lock()
	s.state.Reviews = append([]domain.Review{review}, s.state.Reviews...)
	s.mu.Unlock()
	s.persist()
}

// SendMessage appends to the local outbound message log.
func (s *Store) SendMessage(text string) {
	s.mu.Lock()
	s.state.Messages = append(s.state.Messages, Message{
		ID:        time.Now().UnixMilli(),
		Sender:    "User",
		Text:      text,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()
	s.persist()
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.state.Cart)
}

// Favorites returns a copy of the Favorites collection items.
func (s *Store) Favorites() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favoritesLocked()
}

// Collections returns a copy of every named collection.
func (s *Store) Collections() []Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Collection, len(s.state.Collections))
	for i, c := range s.state.Collections {
		items := make([]domain.Product, len(c.Items))
		copy(items, c.Items)
		out[i] = Collection{Name: c.Name, Items: items}
	}
	return out
}

// User returns the current session user, or nil when anonymous.
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// Token returns the current session token.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Snapshot returns a copy of the full aggregate state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	snap.Cart = cloneCart(s.state.Cart)
	return snap
}

// Flush waits for in-flight background syncs. Intended for shutdown and
// tests; UI mutations never wait on it.
func (s *Store) Flush() {
	s.syncs.Wait()
}

func (s *Store) favoritesLocked() []domain.Product {
	for _, c := range s.state.Collections {
		if c.Name == FavoritesCollection {
			items := make([]domain.Product, len(c.Items))
			copy(items, c.Items)
			return items
		}
	}
	return []domain.Product{}
}

func (s *Store) setFavoritesLocked(items []domain.Product) {
	for i, c := range s.state.Collections {
		if c.Name == FavoritesCollection {
			s.state.Collections[i].Items = items
			return
		}
	}
	s.state.Collections = append(s.state.Collections, Collection{Name: FavoritesCollection, Items: items})
}

// syncAsync pushes snapshots in the background when a session is active. The
// triggering mutation has already returned; failures are logged only.
func (s *Store) syncAsync(cart *[]domain.CartItem, wishlist *[]domain.Product) {
	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()
	if token == "" || (cart == nil && wishlist == nil) {
		return
	}
	s.syncs.Add(1)
	go func() {
		defer s.syncs.Done()
		if err := s.api.SyncUser(token, cart, wishlist); err != nil {
			slog.Warn("state sync failed", "error", err)
		}
	}()
}

func (s *Store) persist() {
	if s.path == "" {
		return
	}
	s.mu.Lock()
	data, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.Unlock()
	if err != nil {
		slog.Warn("persist state failed", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		slog.Warn("persist state failed", "error", err)
	}
}

func cloneCart(cart []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(cart))
	copy(out, cart)
	return out
}
