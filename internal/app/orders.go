package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"atrangi/pkg/auth"
	"atrangi/pkg/domain"
)

// OrderInput is the checkout payload: frozen line-item snapshots plus the
// shipping blob.
type OrderInput struct {
	Items           []domain.CartItem      `json:"items"`
	Total           float64                `json:"total"`
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// CreateOrder places an order for unique art pieces. Every line item is
// checked against live stock before any piece is marked sold; a single
// missing or sold-out item fails the whole order with no partial mutation.
// Notifications fire after commit and never affect the result.
func (a *App) CreateOrder(ctx context.Context, user domain.User, input OrderInput) (domain.Order, error) {
	if len(input.Items) == 0 {
		return domain.Order{}, InvalidStatef("order has no items")
	}

	for _, item := range input.Items {
		product, ok, err := a.store.GetProduct(item.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("check stock: %w", err)
		}
		if !ok {
			return domain.Order{}, NotFoundf("Product %s not found", item.Title)
		}
		if !product.InStock {
			return domain.Order{}, InvalidStatef("Sorry, %q is already sold out.", product.Title)
		}
	}

	// Each piece is unique, so buying it means marking it sold. The default
	// path claims atomically and fails the order if another checkout won the
	// race between the check above and this mark. The two-phase mode skips
	// the claim and overwrites unconditionally, which can oversell under
	// concurrent checkouts of the same piece.
	for _, item := range input.Items {
		if a.twoPhaseStock {
			if err := a.store.SetProductStock(item.ID, false); err != nil {
				return domain.Order{}, fmt.Errorf("mark sold: %w", err)
			}
			continue
		}
		claimed, err := a.store.MarkSoldIfInStock(item.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("mark sold: %w", err)
		}
		if !claimed {
			return domain.Order{}, InvalidStatef("Sorry, %q is already sold out.", item.Title)
		}
	}

	total := input.Total
	if total == 0 {
		for _, item := range input.Items {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			total += item.Price * float64(qty)
		}
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Items:           input.Items,
		Total:           total,
		ShippingDetails: input.ShippingDetails,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.OrderProcessing,
		Timeline: []domain.TimelineEntry{
			{Status: "Order Placed", Timestamp: now},
			{Status: string(domain.OrderProcessing), Timestamp: now},
		},
		CreatedAt: now,
	}
	if err := a.store.SaveOrder(order); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}

	if a.notifier != nil {
		a.notifier.OrderPlaced(ctx, order, user.Email)
	}
	return order, nil
}

// MyOrders returns the caller's orders, newest first.
func (a *App) MyOrders(userID string) ([]domain.Order, error) {
	return a.store.ListOrdersByUser(userID)
}

// AllOrders returns every order, newest first. Admin surface.
func (a *App) AllOrders() ([]domain.Order, error) {
	return a.store.ListOrders()
}

// GetOrder fetches one order; only the owner or an order-admin role may read
// it.
func (a *App) GetOrder(caller domain.User, orderID string) (domain.Order, error) {
	order, ok, err := a.store.GetOrder(orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.Order{}, NotFoundf("Order not found")
	}
	if order.UserID != caller.ID && !auth.Allowed(caller.Role, auth.ActionOrderViewAll) {
		return domain.Order{}, ErrForbidden
	}
	return order, nil
}

// UpdateOrderStatus sets the order status and appends the change to the
// timeline. Any-to-any transitions are allowed for the order-admin role.
func (a *App) UpdateOrderStatus(orderID, status string) (domain.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return domain.Order{}, ErrStatusRequired
	}
	order, ok, err := a.store.GetOrder(orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.Order{}, NotFoundf("Order not found")
	}
	order.Status = domain.OrderStatus(status)
	order.Timeline = append(order.Timeline, domain.TimelineEntry{
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	if err := a.store.SaveOrder(order); err != nil {
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}
