package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"atrangi/pkg/domain"
)

// CommissionInput is the free-text commission request body.
type CommissionInput struct {
	Style       string `json:"style"`
	Budget      string `json:"budget"`
	Description string `json:"description"`
}

// CreateCommission records a commission request stamped with the caller's
// email and Pending status. The free-text fields are accepted as-is.
func (a *App) CreateCommission(user domain.User, input CommissionInput) (domain.Commission, error) {
	commission := domain.Commission{
		ID:          uuid.NewString(),
		UserID:      user.Email,
		Style:       input.Style,
		Budget:      input.Budget,
		Description: input.Description,
		Status:      domain.CommissionPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveCommission(commission); err != nil {
		return domain.Commission{}, fmt.Errorf("save commission: %w", err)
	}
	return commission, nil
}

// MyCommissions returns the caller's commission requests, newest first.
// Commissions reference the requester by email.
func (a *App) MyCommissions(user domain.User) ([]domain.Commission, error) {
	return a.store.ListCommissionsByUser(user.Email)
}

// AllCommissions returns every commission request, newest first.
func (a *App) AllCommissions() ([]domain.Commission, error) {
	return a.store.ListCommissions()
}

// UpdateCommissionStatus sets a free-text status; no enum is enforced past
// the initial Pending.
func (a *App) UpdateCommissionStatus(commissionID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return ErrStatusRequired
	}
	commission, ok, err := a.store.GetCommission(commissionID)
	if err != nil {
		return fmt.Errorf("fetch commission: %w", err)
	}
	if !ok {
		return NotFoundf("Commission not found")
	}
	commission.Status = status
	if err := a.store.SaveCommission(commission); err != nil {
		return fmt.Errorf("update commission: %w", err)
	}
	return nil
}

// ReviewInput is the review submission body.
type ReviewInput struct {
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CreateReview records a review stamped with the caller's email and display
// name. The name is frozen at write time and never re-resolved.
func (a *App) CreateReview(user domain.User, input ReviewInput) (domain.Review, error) {
	review := domain.Review{
		ID:        uuid.NewString(),
		ProductID: input.ProductID,
		UserID:    user.Email,
		UserName:  user.Name,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveReview(review); err != nil {
		return domain.Review{}, fmt.Errorf("save review: %w", err)
	}
	return review, nil
}

// ReviewsForProduct returns a product's reviews, newest first. Public read.
func (a *App) ReviewsForProduct(productID int64) ([]domain.Review, error) {
	return a.store.ListReviewsByProduct(productID)
}
