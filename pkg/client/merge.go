package client

import (
	"math"

	"atrangi/pkg/domain"
)

// MergeCarts combines the server cart with a locally accumulated anonymous
// cart. Server order is kept; local-only items append after. On id collision
// quantities are summed, not replaced.
func MergeCarts(server, local []domain.CartItem) []domain.CartItem {
	merged := make([]domain.CartItem, len(server))
	copy(merged, server)
	index := make(map[int64]int, len(merged))
	for i, item := range merged {
		index[item.ID] = i
	}
	for _, item := range local {
		if i, ok := index[item.ID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// MergeWishlists unions the server wishlist with the local favorites by id.
// Server entries win on collision; local-only entries append after.
func MergeWishlists(server, local []domain.Product) []domain.Product {
	merged := make([]domain.Product, len(server))
	copy(merged, server)
	seen := make(map[int64]bool, len(merged))
	for _, p := range merged {
		seen[p.ID] = true
	}
	for _, p := range local {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		merged = append(merged, p)
	}
	return merged
}

// AverageRating is the arithmetic mean of review ratings rounded to one
// decimal, or 0 when there are no reviews.
func AverageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}
