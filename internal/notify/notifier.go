package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"atrangi/pkg/domain"
)

// Event kinds dispatched after checkout.
const (
	KindOrderConfirmation = "order_confirmation"
	KindAdminAlert        = "admin_alert"
)

// Event is one email to send. Order fields are denormalized into the event so
// delivery never needs a store lookup.
type Event struct {
	Kind      string  `json:"kind"`
	To        string  `json:"to"`
	OrderID   string  `json:"orderId"`
	Total     float64 `json:"total"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
}

// Mailer delivers a single event.
type Mailer interface {
	Send(ctx context.Context, ev Event) error
}

// Notifier accepts order events. Implementations are best-effort: delivery
// failures are logged, never returned to the request that triggered them.
type Notifier interface {
	OrderPlaced(ctx context.Context, order domain.Order, userEmail string)
}

// OrderEvents expands one placed order into its notification fan-out: a
// confirmation to the buyer and an alert to the admin inbox.
func OrderEvents(order domain.Order, userEmail, adminEmail string) []Event {
	events := []Event{{
		Kind:      KindOrderConfirmation,
		To:        userEmail,
		OrderID:   order.ID,
		Total:     order.Total,
		FirstName: order.ShippingDetails.FirstName,
		LastName:  order.ShippingDetails.LastName,
	}}
	if adminEmail != "" {
		events = append(events, Event{
			Kind:      KindAdminAlert,
			To:        adminEmail,
			OrderID:   order.ID,
			Total:     order.Total,
			FirstName: order.ShippingDetails.FirstName,
			LastName:  order.ShippingDetails.LastName,
		})
	}
	return events
}

// Subject renders the mail subject line for an event.
func Subject(ev Event) string {
	switch ev.Kind {
	case KindAdminAlert:
		return fmt.Sprintf("New Order Received - #%s", ev.OrderID)
	default:
		return fmt.Sprintf("Order Confirmation - #%s", ev.OrderID)
	}
}

// LogMailer writes the mail that would have been sent to the log. It stands in
// for a real SMTP transport in development and tests.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, ev Event) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail sent",
		"kind", ev.Kind,
		"to", ev.To,
		"subject", Subject(ev),
		"order_id", ev.OrderID,
		"total", ev.Total,
	)
	return nil
}

// DirectNotifier hands events straight to a mailer on a background goroutine,
// skipping the queue. Used when Redis is not configured.
type DirectNotifier struct {
	Mailer     Mailer
	AdminEmail string
	Timeout    time.Duration
}

func (n *DirectNotifier) OrderPlaced(_ context.Context, order domain.Order, userEmail string) {
	events := OrderEvents(order, userEmail, n.AdminEmail)
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		for _, ev := range events {
			if err := n.Mailer.Send(ctx, ev); err != nil {
				slog.Error("order notification failed", "kind", ev.Kind, "order_id", ev.OrderID, "error", err)
			}
		}
	}()
}
