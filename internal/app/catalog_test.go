package app

import (
	"errors"
	"testing"
	"time"

	"atrangi/internal/store"
	"atrangi/pkg/auth"
	"atrangi/pkg/domain"
)

func seedCatalog(t *testing.T, a *App) {
	t.Helper()
	pieces := []domain.Product{
		{ID: 1, Title: "Ethereal Horizons", Artist: "Sanya", Price: 192000, Category: "Resin Art", InStock: true, Description: "coastal sunsets"},
		{ID: 2, Title: "Golden Fracture", Artist: "Arjun", Price: 148000, Category: "Sculptures", InStock: true, Description: "kintsugi"},
		{ID: 3, Title: "Silent Void", Artist: "Isha", Price: 256000, Category: "Sketches & Drawings", InStock: true, Description: "charcoal silence"},
		{ID: 4, Title: "Cerulean Dreams", Artist: "Sanya", Price: 168000, Category: "Resin Art", InStock: false, Description: "ocean depths"},
	}
	for _, p := range pieces {
		if _, err := a.CreateProduct(p); err != nil {
			t.Fatalf("seed product %d: %v", p.ID, err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestListProductsCombinableFilters(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)

	minPrice := 150000.0
	maxPrice := 260000.0
	page, err := a.ListProducts(store.ProductFilter{
		Search:   "s",
		Category: "Resin Art",
		Artist:   "Sanya",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", page.Total)
	}

	// "All" category is a no-op filter
	page, err = a.ListProducts(store.ProductFilter{Category: "All"})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("expected 4 products, got %d", page.Total)
	}
}

func TestListProductsSortAndPaginate(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)

	page, err := a.ListProducts(store.ProductFilter{Sort: "price_asc", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 4 || page.Pages != 2 || page.Page != 1 {
		t.Fatalf("unexpected pagination: total=%d pages=%d page=%d", page.Total, page.Pages, page.Page)
	}
	if len(page.Products) != 2 || page.Products[0].Price != 148000 {
		t.Fatalf("expected cheapest first, got %+v", page.Products)
	}

	page, err = a.ListProducts(store.ProductFilter{Sort: "price_desc", Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Products) != 2 || page.Products[1].Price != 148000 {
		t.Fatalf("expected cheapest last on final page, got %+v", page.Products)
	}
}

func TestSearchMatchesTitleAndDescription(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)

	page, err := a.ListProducts(store.ProductFilter{Search: "KINTSUGI"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Products[0].ID != 2 {
		t.Fatalf("expected description match, got %+v", page.Products)
	}
}

func TestRelatedProductsExcludesCurrentAndCaps(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	for i := int64(10); i < 14; i++ {
		if _, err := a.CreateProduct(domain.Product{ID: i, Title: "Extra", Category: "Resin Art", InStock: true}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	related, err := a.RelatedProducts("Resin Art", 1)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(related))
	}
	for _, p := range related {
		if p.ID == 1 {
			t.Fatalf("current product must be excluded")
		}
	}
}

func TestUpdateProductContentTeamStripsForbiddenFields(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	editor := domain.User{ID: "e-1", Role: domain.RoleContentTeam}

	updated, err := a.UpdateProduct(editor, 1, map[string]any{
		"description": "rewritten",
		"price":       1.0,
		"inStock":     false,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "rewritten" {
		t.Fatalf("allowed field must apply, got %q", updated.Description)
	}
	if updated.Price != 192000 || !updated.InStock {
		t.Fatalf("forbidden fields must be silently dropped, got %+v", updated)
	}
}

func TestUpdateProductMarketingFeaturedOnly(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	marketer := domain.User{ID: "m-1", Role: domain.RoleMarketingEM}

	updated, err := a.UpdateProduct(marketer, 1, map[string]any{"featured": true, "title": "hijack"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Featured {
		t.Fatalf("featured must apply")
	}
	if updated.Title != "Ethereal Horizons" {
		t.Fatalf("other fields must be dropped, got %q", updated.Title)
	}

	_, err = a.UpdateProduct(marketer, 1, map[string]any{"title": "hijack"})
	if !errors.Is(err, auth.ErrMarketingFeaturedOnly) {
		t.Fatalf("expected ErrMarketingFeaturedOnly, got %v", err)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	a, _, _ := newTestApp(t)
	admin := domain.User{ID: "a-1", Role: domain.RoleAdmin}
	_, err := a.UpdateProduct(admin, 999, map[string]any{"title": "x"})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteProductGuardsSoldPieces(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)

	err := a.DeleteProduct(4)
	if !errors.Is(err, ErrCannotDeleteSold) {
		t.Fatalf("expected ErrCannotDeleteSold, got %v", err)
	}
	if err.Error() != "Cannot delete sold items. Please archive instead." {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if err := a.DeleteProduct(1); err != nil {
		t.Fatalf("delete in-stock: %v", err)
	}
	if _, err := a.GetProduct(1); !IsNotFound(err) {
		t.Fatalf("expected product gone, got %v", err)
	}

	if err := a.DeleteProduct(999); !IsNotFound(err) {
		t.Fatalf("expected NotFound for missing product, got %v", err)
	}
}

func TestArtistCRUD(t *testing.T) {
	a, _, _ := newTestApp(t)
	created, err := a.CreateArtist(domain.Artist{Name: "Zara Khan", Expertise: "Digital Surrealism"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected minted catalog id")
	}

	updated, err := a.UpdateArtist(created.ID, map[string]any{"bio": "new bio"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Bio != "new bio" || updated.Name != "Zara Khan" {
		t.Fatalf("unexpected artist: %+v", updated)
	}

	if _, err := a.UpdateArtist(999, map[string]any{"bio": "x"}); !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	if err := a.DeleteArtist(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.GetArtist(created.ID); !IsNotFound(err) {
		t.Fatalf("expected artist gone, got %v", err)
	}
}
