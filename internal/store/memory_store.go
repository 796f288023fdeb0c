package store

import (
	"sort"
	"strings"
	"sync"

	"atrangi/pkg/domain"
)

// MemoryStore keeps everything in-process. It mirrors GormStore behavior and
// backs the test suites.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]domain.User // key: user ID
	email       map[string]string      // email -> user ID
	userSeq     []string               // insertion order of user IDs
	products    map[int64]domain.Product
	productSeq  []int64
	artists     map[int64]domain.Artist
	artistSeq   []int64
	orders      []domain.Order
	commissions []domain.Commission
	reviews     []domain.Review
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		products: make(map[int64]domain.Product),
		artists:  make(map[int64]domain.Artist),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.ID]; !exists {
		m.userSeq = append(m.userSeq, u.ID)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// ListUsers returns users newest first (reverse insertion order).
func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.userSeq))
	for i := len(m.userSeq) - 1; i >= 0; i-- {
		if u, ok := m.users[m.userSeq[i]]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (m *MemoryStore) SaveProduct(p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[p.ID]; !exists {
		m.productSeq = append(m.productSeq, p.ID)
	}
	m.products[p.ID] = p
	return nil
}

func (m *MemoryStore) GetProduct(catalogID int64) (domain.Product, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[catalogID]
	return p, ok, nil
}

func (m *MemoryStore) ListProducts(f ProductFilter) ([]domain.Product, int64, error) {
	m.mu.RLock()
	matched := make([]domain.Product, 0, len(m.productSeq))
	for _, id := range m.productSeq {
		p, ok := m.products[id]
		if !ok || !matchProduct(p, f) {
			continue
		}
		matched = append(matched, p)
	}
	m.mu.RUnlock()

	switch f.Sort {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	case "newest":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	total := int64(len(matched))
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 12
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []domain.Product{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchProduct(p domain.Product, f ProductFilter) bool {
	if search := strings.TrimSpace(f.Search); search != "" {
		needle := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if f.Category != "" && f.Category != "All" && p.Category != f.Category {
		return false
	}
	if f.Artist != "" && p.Artist != f.Artist {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

func (m *MemoryStore) ListProductsByCategory(category string) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Product, 0)
	for _, id := range m.productSeq {
		if p, ok := m.products[id]; ok && p.Category == category {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListProductsByArtist(artist string) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Product, 0)
	for _, id := range m.productSeq {
		if p, ok := m.products[id]; ok && p.Artist == artist {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemoryStore) UpdateProductFields(catalogID int64, fields map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[catalogID]
	if !ok {
		return false, nil
	}
	for key, value := range fields {
		switch key {
		case "title":
			if v, ok := value.(string); ok {
				p.Title = v
			}
		case "artist":
			if v, ok := value.(string); ok {
				p.Artist = v
			}
		case "price":
			if v, ok := toFloat(value); ok {
				p.Price = v
			}
		case "category":
			if v, ok := value.(string); ok {
				p.Category = v
			}
		case "image":
			if v, ok := value.(string); ok {
				p.Image = v
			}
		case "description":
			if v, ok := value.(string); ok {
				p.Description = v
			}
		case "dimensions":
			if v, ok := value.(string); ok {
				p.Dimensions = v
			}
		case "materials":
			if v, ok := value.(string); ok {
				p.Materials = v
			}
		case "inStock":
			if v, ok := value.(bool); ok {
				p.InStock = v
			}
		case "featured":
			if v, ok := value.(bool); ok {
				p.Featured = v
			}
		}
	}
	m.products[catalogID] = p
	return true, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (m *MemoryStore) DeleteProduct(catalogID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, catalogID)
	filtered := m.productSeq[:0]
	for _, id := range m.productSeq {
		if id != catalogID {
			filtered = append(filtered, id)
		}
	}
	m.productSeq = filtered
	return nil
}

func (m *MemoryStore) SetProductStock(catalogID int64, inStock bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[catalogID]
	if !ok {
		return nil
	}
	p.InStock = inStock
	m.products[catalogID] = p
	return nil
}

func (m *MemoryStore) MarkSoldIfInStock(catalogID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[catalogID]
	if !ok || !p.InStock {
		return false, nil
	}
	p.InStock = false
	m.products[catalogID] = p
	return true, nil
}

func (m *MemoryStore) SaveArtist(a domain.Artist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.artists[a.ID]; !exists {
		m.artistSeq = append(m.artistSeq, a.ID)
	}
	m.artists[a.ID] = a
	return nil
}

func (m *MemoryStore) GetArtist(catalogID int64) (domain.Artist, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artists[catalogID]
	return a, ok, nil
}

func (m *MemoryStore) ListArtists() ([]domain.Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Artist, 0, len(m.artistSeq))
	for _, id := range m.artistSeq {
		if a, ok := m.artists[id]; ok {
			res = append(res, a)
		}
	}
	return res, nil
}

func (m *MemoryStore) UpdateArtistFields(catalogID int64, fields map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.artists[catalogID]
	if !ok {
		return false, nil
	}
	for key, value := range fields {
		v, isString := value.(string)
		if !isString {
			continue
		}
		switch key {
		case "name":
			a.Name = v
		case "expertise":
			a.Expertise = v
		case "university":
			a.University = v
		case "image":
			a.Image = v
		case "bio":
			a.Bio = v
		}
	}
	m.artists[catalogID] = a
	return true, nil
}

func (m *MemoryStore) DeleteArtist(catalogID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.artists, catalogID)
	filtered := m.artistSeq[:0]
	for _, id := range m.artistSeq {
		if id != catalogID {
			filtered = append(filtered, id)
		}
	}
	m.artistSeq = filtered
	return nil
}

func (m *MemoryStore) SaveOrder(o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.orders {
		if existing.ID == o.ID {
			m.orders[i] = o
			return nil
		}
	}
	m.orders = append(m.orders, o)
	return nil
}

func (m *MemoryStore) GetOrder(id string) (domain.Order, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, true, nil
		}
	}
	return domain.Order{}, false, nil
}

func (m *MemoryStore) ListOrdersByUser(userID string) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Order, 0)
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			res = append(res, m.orders[i])
		}
	}
	return res, nil
}

func (m *MemoryStore) ListOrders() ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Order, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		res = append(res, m.orders[i])
	}
	return res, nil
}

func (m *MemoryStore) SaveCommission(c domain.Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.commissions {
		if existing.ID == c.ID {
			m.commissions[i] = c
			return nil
		}
	}
	m.commissions = append(m.commissions, c)
	return nil
}

func (m *MemoryStore) GetCommission(id string) (domain.Commission, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.commissions {
		if c.ID == id {
			return c, true, nil
		}
	}
	return domain.Commission{}, false, nil
}

func (m *MemoryStore) ListCommissionsByUser(userRef string) ([]domain.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Commission, 0)
	for i := len(m.commissions) - 1; i >= 0; i-- {
		if m.commissions[i].UserID == userRef {
			res = append(res, m.commissions[i])
		}
	}
	return res, nil
}

func (m *MemoryStore) ListCommissions() ([]domain.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Commission, 0, len(m.commissions))
	for i := len(m.commissions) - 1; i >= 0; i-- {
		res = append(res, m.commissions[i])
	}
	return res, nil
}

func (m *MemoryStore) SaveReview(r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *MemoryStore) ListReviewsByProduct(productID int64) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Review, 0)
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].ProductID == productID {
			res = append(res, m.reviews[i])
		}
	}
	return res, nil
}
