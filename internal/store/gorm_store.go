package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"atrangi/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&ArtistModel{},
		&OrderModel{},
		&CommissionModel{},
		&ReviewModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user, including the denormalized cart and
// wishlist snapshots.
func (s *GormStore) SaveUser(u domain.User) error {
	model, err := userToModel(u)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password_hash", "role", "avatar", "cart", "wishlist", "addresses"}),
	}).Create(&model).Error
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	return u, err == nil, err
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	return u, err == nil, err
}

// ListUsers returns all users, newest first.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		u, err := userFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, nil
}

// SaveProduct stores or updates a product keyed by catalog id.
func (s *GormStore) SaveProduct(p domain.Product) error {
	model := productToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "catalog_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "artist", "price", "category", "image", "description", "dimensions", "materials", "in_stock", "featured"}),
	}).Create(&model).Error
}

// GetProduct retrieves a product by catalog id.
func (s *GormStore) GetProduct(catalogID int64) (domain.Product, bool, error) {
	var model ProductModel
	if err := s.db.First(&model, "catalog_id = ?", catalogID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, err
	}
	return productFromModel(model), true, nil
}

// ListProducts applies the combinable filter set and returns one page plus
// the total match count.
func (s *GormStore) ListProducts(f ProductFilter) ([]domain.Product, int64, error) {
	tx := s.db.Model(&ProductModel{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" && f.Category != "All" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.Artist != "" {
		tx = tx.Where("artist = ?", f.Artist)
	}
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "price_asc":
		tx = tx.Order("price ASC")
	case "price_desc":
		tx = tx.Order("price DESC")
	case "newest":
		tx = tx.Order("created_at DESC")
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 12
	}
	var models []ProductModel
	if err := tx.Offset((page - 1) * limit).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	res := make([]domain.Product, 0, len(models))
	for _, m := range models {
		res = append(res, productFromModel(m))
	}
	return res, total, nil
}

// ListProductsByCategory returns every product in a category.
func (s *GormStore) ListProductsByCategory(category string) ([]domain.Product, error) {
	return s.listProducts("category = ?", category)
}

// ListProductsByArtist returns every product attributed to the artist name.
func (s *GormStore) ListProductsByArtist(artist string) ([]domain.Product, error) {
	return s.listProducts("artist = ?", artist)
}

func (s *GormStore) listProducts(cond string, args ...any) ([]domain.Product, error) {
	var models []ProductModel
	if err := s.db.Where(cond, args...).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Product, 0, len(models))
	for _, m := range models {
		res = append(res, productFromModel(m))
	}
	return res, nil
}

// UpdateProductFields applies a partial update; keys outside the known column
// map are dropped. Returns false when no product matched.
func (s *GormStore) UpdateProductFields(catalogID int64, fields map[string]any) (bool, error) {
	updates := columnUpdates(productColumns, fields)
	if len(updates) == 0 {
		var count int64
		if err := s.db.Model(&ProductModel{}).Where("catalog_id = ?", catalogID).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	res := s.db.Model(&ProductModel{}).Where("catalog_id = ?", catalogID).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// DeleteProduct removes a product record.
func (s *GormStore) DeleteProduct(catalogID int64) error {
	return s.db.Delete(&ProductModel{}, "catalog_id = ?", catalogID).Error
}

// SetProductStock sets the stock flag unconditionally (legacy two-phase path).
func (s *GormStore) SetProductStock(catalogID int64, inStock bool) error {
	return s.db.Model(&ProductModel{}).Where("catalog_id = ?", catalogID).Update("in_stock", inStock).Error
}

// MarkSoldIfInStock atomically flips in_stock to false and reports whether
// this call won the flip. A false return means the piece was already sold.
func (s *GormStore) MarkSoldIfInStock(catalogID int64) (bool, error) {
	res := s.db.Model(&ProductModel{}).
		Where("catalog_id = ? AND in_stock = ?", catalogID, true).
		Update("in_stock", false)
	return res.RowsAffected > 0, res.Error
}

// SaveArtist stores or updates an artist keyed by catalog id.
func (s *GormStore) SaveArtist(a domain.Artist) error {
	model := artistToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "catalog_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "expertise", "university", "image", "bio"}),
	}).Create(&model).Error
}

// GetArtist retrieves an artist by catalog id.
func (s *GormStore) GetArtist(catalogID int64) (domain.Artist, bool, error) {
	var model ArtistModel
	if err := s.db.First(&model, "catalog_id = ?", catalogID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Artist{}, false, nil
		}
		return domain.Artist{}, false, err
	}
	return artistFromModel(model), true, nil
}

// ListArtists returns all artists.
func (s *GormStore) ListArtists() ([]domain.Artist, error) {
	var models []ArtistModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Artist, 0, len(models))
	for _, m := range models {
		res = append(res, artistFromModel(m))
	}
	return res, nil
}

// UpdateArtistFields applies a partial artist update.
func (s *GormStore) UpdateArtistFields(catalogID int64, fields map[string]any) (bool, error) {
	updates := columnUpdates(artistColumns, fields)
	if len(updates) == 0 {
		var count int64
		if err := s.db.Model(&ArtistModel{}).Where("catalog_id = ?", catalogID).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	res := s.db.Model(&ArtistModel{}).Where("catalog_id = ?", catalogID).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// DeleteArtist removes an artist record.
func (s *GormStore) DeleteArtist(catalogID int64) error {
	return s.db.Delete(&ArtistModel{}, "catalog_id = ?", catalogID).Error
}

// SaveOrder persists an order record. Orders are never deleted.
func (s *GormStore) SaveOrder(o domain.Order) error {
	model, err := orderToModel(o)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "timeline"}),
	}).Create(&model).Error
}

// GetOrder retrieves an order by id.
func (s *GormStore) GetOrder(id string) (domain.Order, bool, error) {
	var model OrderModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, err
	}
	o, err := orderFromModel(model)
	return o, err == nil, err
}

// ListOrdersByUser returns a user's orders, newest first.
func (s *GormStore) ListOrdersByUser(userID string) ([]domain.Order, error) {
	return s.listOrders("user_id = ?", userID)
}

// ListOrders returns every order, newest first.
func (s *GormStore) ListOrders() ([]domain.Order, error) {
	return s.listOrders("")
}

func (s *GormStore) listOrders(cond string, args ...any) ([]domain.Order, error) {
	tx := s.db.Order("created_at DESC")
	if cond != "" {
		tx = tx.Where(cond, args...)
	}
	var models []OrderModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Order, 0, len(models))
	for _, m := range models {
		o, err := orderFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, nil
}

// SaveCommission persists a commission request.
func (s *GormStore) SaveCommission(c domain.Commission) error {
	model := commissionToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status"}),
	}).Create(&model).Error
}

// GetCommission retrieves a commission by id.
func (s *GormStore) GetCommission(id string) (domain.Commission, bool, error) {
	var model CommissionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Commission{}, false, nil
		}
		return domain.Commission{}, false, err
	}
	return commissionFromModel(model), true, nil
}

// ListCommissionsByUser returns one requester's commissions, newest first.
func (s *GormStore) ListCommissionsByUser(userRef string) ([]domain.Commission, error) {
	return s.listCommissions("user_id = ?", userRef)
}

// ListCommissions returns the whole queue, newest first.
func (s *GormStore) ListCommissions() ([]domain.Commission, error) {
	return s.listCommissions("")
}

func (s *GormStore) listCommissions(cond string, args ...any) ([]domain.Commission, error) {
	tx := s.db.Order("created_at DESC")
	if cond != "" {
		tx = tx.Where(cond, args...)
	}
	var models []CommissionModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Commission, 0, len(models))
	for _, m := range models {
		res = append(res, commissionFromModel(m))
	}
	return res, nil
}

// SaveReview appends a review. Reviews have no update or delete surface.
func (s *GormStore) SaveReview(r domain.Review) error {
	model := reviewToModel(r)
	return s.db.Create(&model).Error
}

// ListReviewsByProduct returns a product's reviews, newest first.
func (s *GormStore) ListReviewsByProduct(productID int64) ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Review, 0, len(models))
	for _, m := range models {
		res = append(res, reviewFromModel(m))
	}
	return res, nil
}

func columnUpdates(columns map[string]string, fields map[string]any) map[string]any {
	updates := make(map[string]any, len(fields))
	for key, value := range fields {
		column, ok := columns[key]
		if !ok {
			continue
		}
		updates[column] = value
	}
	return updates
}

func marshalJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("null"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalJSON(data datatypes.JSON, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func userToModel(u domain.User) (UserModel, error) {
	cart, err := marshalJSON(u.Cart)
	if err != nil {
		return UserModel{}, err
	}
	wishlist, err := marshalJSON(u.Wishlist)
	if err != nil {
		return UserModel{}, err
	}
	addresses, err := marshalJSON(u.Addresses)
	if err != nil {
		return UserModel{}, err
	}
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Avatar:       u.Avatar,
		Cart:         cart,
		Wishlist:     wishlist,
		Addresses:    addresses,
		CreatedAt:    u.CreatedAt,
	}, nil
}

func userFromModel(m UserModel) (domain.User, error) {
	u := domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Avatar:       m.Avatar,
		CreatedAt:    m.CreatedAt,
	}
	if err := unmarshalJSON(m.Cart, &u.Cart); err != nil {
		return domain.User{}, err
	}
	if err := unmarshalJSON(m.Wishlist, &u.Wishlist); err != nil {
		return domain.User{}, err
	}
	if err := unmarshalJSON(m.Addresses, &u.Addresses); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func productToModel(p domain.Product) ProductModel {
	return ProductModel{
		CatalogID:   p.ID,
		Title:       p.Title,
		Artist:      p.Artist,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
		Dimensions:  p.Dimensions,
		Materials:   p.Materials,
		InStock:     p.InStock,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
	}
}

func productFromModel(m ProductModel) domain.Product {
	return domain.Product{
		ID:          m.CatalogID,
		Title:       m.Title,
		Artist:      m.Artist,
		Price:       m.Price,
		Category:    m.Category,
		Image:       m.Image,
		Description: m.Description,
		Dimensions:  m.Dimensions,
		Materials:   m.Materials,
		InStock:     m.InStock,
		Featured:    m.Featured,
		CreatedAt:   m.CreatedAt,
	}
}

func artistToModel(a domain.Artist) ArtistModel {
	return ArtistModel{
		CatalogID:  a.ID,
		Name:       a.Name,
		Expertise:  a.Expertise,
		University: a.University,
		Image:      a.Image,
		Bio:        a.Bio,
		CreatedAt:  a.CreatedAt,
	}
}

func artistFromModel(m ArtistModel) domain.Artist {
	return domain.Artist{
		ID:         m.CatalogID,
		Name:       m.Name,
		Expertise:  m.Expertise,
		University: m.University,
		Image:      m.Image,
		Bio:        m.Bio,
		CreatedAt:  m.CreatedAt,
	}
}

func orderToModel(o domain.Order) (OrderModel, error) {
	items, err := marshalJSON(o.Items)
	if err != nil {
		return OrderModel{}, err
	}
	shipping, err := marshalJSON(o.ShippingDetails)
	if err != nil {
		return OrderModel{}, err
	}
	timeline, err := marshalJSON(o.Timeline)
	if err != nil {
		return OrderModel{}, err
	}
	return OrderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Total:           o.Total,
		ShippingDetails: shipping,
		PaymentMethod:   o.PaymentMethod,
		Status:          string(o.Status),
		Timeline:        timeline,
		CreatedAt:       o.CreatedAt,
	}, nil
}

func orderFromModel(m OrderModel) (domain.Order, error) {
	o := domain.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		Total:         m.Total,
		PaymentMethod: m.PaymentMethod,
		Status:        domain.OrderStatus(m.Status),
		CreatedAt:     m.CreatedAt,
	}
	if err := unmarshalJSON(m.Items, &o.Items); err != nil {
		return domain.Order{}, err
	}
	if err := unmarshalJSON(m.ShippingDetails, &o.ShippingDetails); err != nil {
		return domain.Order{}, err
	}
	if err := unmarshalJSON(m.Timeline, &o.Timeline); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func commissionToModel(c domain.Commission) CommissionModel {
	return CommissionModel{
		ID:          c.ID,
		UserID:      c.UserID,
		Style:       c.Style,
		Budget:      c.Budget,
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}

func commissionFromModel(m CommissionModel) domain.Commission {
	return domain.Commission{
		ID:          m.ID,
		UserID:      m.UserID,
		Style:       m.Style,
		Budget:      m.Budget,
		Description: m.Description,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
	}
}

func reviewToModel(r domain.Review) ReviewModel {
	return ReviewModel{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func reviewFromModel(m ReviewModel) domain.Review {
	return domain.Review{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}
