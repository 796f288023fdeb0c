package app

import (
	"fmt"
	"time"

	"atrangi/internal/store"
	"atrangi/pkg/auth"
	"atrangi/pkg/domain"
)

// ProductPage is a filtered catalog page plus the pagination totals the
// storefront grid renders.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ListProducts runs the combinable catalog query. All set filters apply at
// once; pagination defaults to page 1, 12 per page.
func (a *App) ListProducts(filter store.ProductFilter) (ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 12
	}
	products, total, err := a.store.ListProducts(filter)
	if err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return ProductPage{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		Pages:    pages,
	}, nil
}

// GetProduct fetches a product by catalog id.
func (a *App) GetProduct(catalogID int64) (domain.Product, error) {
	product, ok, err := a.store.GetProduct(catalogID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("fetch product: %w", err)
	}
	if !ok {
		return domain.Product{}, NotFoundf("Product not found")
	}
	return product, nil
}

// RelatedProducts returns up to three other pieces from the same category.
func (a *App) RelatedProducts(category string, currentID int64) ([]domain.Product, error) {
	products, err := a.store.ListProductsByCategory(category)
	if err != nil {
		return nil, fmt.Errorf("list related: %w", err)
	}
	related := make([]domain.Product, 0, 3)
	for _, p := range products {
		if p.ID == currentID {
			continue
		}
		related = append(related, p)
		if len(related) == 3 {
			break
		}
	}
	return related, nil
}

// ProductsByArtist returns every piece credited to the named artist.
func (a *App) ProductsByArtist(artist string) ([]domain.Product, error) {
	products, err := a.store.ListProductsByArtist(artist)
	if err != nil {
		return nil, fmt.Errorf("list by artist: %w", err)
	}
	return products, nil
}

// CreateProduct stores a new catalog entry. The catalog id is minted from the
// wall clock in milliseconds, matching the ids of the seeded catalog.
func (a *App) CreateProduct(product domain.Product) (domain.Product, error) {
	now := time.Now().UTC()
	if product.ID == 0 {
		product.ID = now.UnixMilli()
	}
	product.CreatedAt = now
	if err := a.store.SaveProduct(product); err != nil {
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}
	return product, nil
}

// UpdateProduct applies a partial update after running the caller's role
// through the field policy. Keys of updates are JSON field names.
func (a *App) UpdateProduct(caller domain.User, catalogID int64, updates map[string]any) (domain.Product, error) {
	filtered, err := auth.FilterProductUpdate(caller.Role, updates)
	if err != nil {
		return domain.Product{}, err
	}
	ok, err := a.store.UpdateProductFields(catalogID, filtered)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if !ok {
		return domain.Product{}, NotFoundf("Product not found")
	}
	return a.GetProduct(catalogID)
}

// DeleteProduct removes an in-stock piece from the catalog. Sold pieces are
// protected so order history keeps resolving; archive them instead.
func (a *App) DeleteProduct(catalogID int64) error {
	product, ok, err := a.store.GetProduct(catalogID)
	if err != nil {
		return fmt.Errorf("fetch product: %w", err)
	}
	if !ok {
		return NotFoundf("Product not found")
	}
	if !product.InStock {
		return ErrCannotDeleteSold
	}
	if err := a.store.DeleteProduct(catalogID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListArtists returns every artist profile.
func (a *App) ListArtists() ([]domain.Artist, error) {
	return a.store.ListArtists()
}

// GetArtist fetches an artist by catalog id.
func (a *App) GetArtist(catalogID int64) (domain.Artist, error) {
	artist, ok, err := a.store.GetArtist(catalogID)
	if err != nil {
		return domain.Artist{}, fmt.Errorf("fetch artist: %w", err)
	}
	if !ok {
		return domain.Artist{}, NotFoundf("Artist not found")
	}
	return artist, nil
}

// CreateArtist stores a new artist profile with a clock-minted catalog id.
func (a *App) CreateArtist(artist domain.Artist) (domain.Artist, error) {
	now := time.Now().UTC()
	if artist.ID == 0 {
		artist.ID = now.UnixMilli()
	}
	artist.CreatedAt = now
	if err := a.store.SaveArtist(artist); err != nil {
		return domain.Artist{}, fmt.Errorf("save artist: %w", err)
	}
	return artist, nil
}

// UpdateArtist applies a partial update; artist fields carry no per-role
// policy beyond the route gate.
func (a *App) UpdateArtist(catalogID int64, updates map[string]any) (domain.Artist, error) {
	ok, err := a.store.UpdateArtistFields(catalogID, updates)
	if err != nil {
		return domain.Artist{}, fmt.Errorf("update artist: %w", err)
	}
	if !ok {
		return domain.Artist{}, NotFoundf("Artist not found")
	}
	return a.GetArtist(catalogID)
}

// DeleteArtist removes an artist profile. Their pieces keep the denormalized
// artist name.
func (a *App) DeleteArtist(catalogID int64) error {
	if err := a.store.DeleteArtist(catalogID); err != nil {
		return fmt.Errorf("delete artist: %w", err)
	}
	return nil
}
