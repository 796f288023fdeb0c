package client

import (
	"testing"

	"atrangi/pkg/domain"
)

func item(id int64, qty int) domain.CartItem {
	return domain.CartItem{Product: domain.Product{ID: id}, Quantity: qty}
}

func TestMergeCartsSumsQuantitiesOnCollision(t *testing.T) {
	server := []domain.CartItem{item(1, 1), item(2, 1)}
	local := []domain.CartItem{item(1, 2)}

	merged := MergeCarts(server, local)
	if len(merged) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(merged))
	}
	if merged[0].ID != 1 || merged[0].Quantity != 3 {
		t.Fatalf("expected id 1 with quantity 3, got %+v", merged[0])
	}
	if merged[1].ID != 2 || merged[1].Quantity != 1 {
		t.Fatalf("expected id 2 with quantity 1, got %+v", merged[1])
	}
}

func TestMergeCartsAppendsLocalOnly(t *testing.T) {
	server := []domain.CartItem{item(1, 1)}
	local := []domain.CartItem{item(3, 1), item(1, 1)}

	merged := MergeCarts(server, local)
	if len(merged) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(merged))
	}
	// server order first, local-only items after
	if merged[0].ID != 1 || merged[0].Quantity != 2 || merged[1].ID != 3 {
		t.Fatalf("unexpected merge: %+v", merged)
	}
}

func TestMergeCartsEmptySides(t *testing.T) {
	if merged := MergeCarts(nil, []domain.CartItem{item(1, 1)}); len(merged) != 1 {
		t.Fatalf("expected local cart to survive, got %+v", merged)
	}
	if merged := MergeCarts([]domain.CartItem{item(1, 1)}, nil); len(merged) != 1 {
		t.Fatalf("expected server cart to survive, got %+v", merged)
	}
	if merged := MergeCarts(nil, nil); len(merged) != 0 {
		t.Fatalf("expected empty merge, got %+v", merged)
	}
}

func TestMergeWishlistsUnionServerWins(t *testing.T) {
	server := []domain.Product{{ID: 1, Title: "Server Copy"}, {ID: 2}}
	local := []domain.Product{{ID: 1, Title: "Local Copy"}, {ID: 3}}

	merged := MergeWishlists(server, local)
	if len(merged) != 3 {
		t.Fatalf("expected union of 3, got %d", len(merged))
	}
	if merged[0].Title != "Server Copy" {
		t.Fatalf("server entry must win on collision, got %q", merged[0].Title)
	}
	if merged[2].ID != 3 {
		t.Fatalf("local-only entry must append, got %+v", merged)
	}
}

func TestAverageRating(t *testing.T) {
	reviews := []domain.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	if got := AverageRating(reviews); got != 4.3 {
		t.Fatalf("expected 4.3, got %v", got)
	}
	if got := AverageRating(nil); got != 0 {
		t.Fatalf("expected 0 for no reviews, got %v", got)
	}
	if got := AverageRating([]domain.Review{{Rating: 3}}); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}
