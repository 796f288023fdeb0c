package notify

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"atrangi/pkg/domain"
)

func testOrder() domain.Order {
	return domain.Order{
		ID:    "ord-1",
		Total: 192000,
		ShippingDetails: domain.ShippingDetails{
			FirstName: "Asha",
			LastName:  "Rao",
		},
	}
}

func TestOrderEventsFanOut(t *testing.T) {
	events := OrderEvents(testOrder(), "asha@x.com", "admin@atrangi.com")
	if len(events) != 2 {
		t.Fatalf("expected confirmation plus admin alert, got %d", len(events))
	}
	if events[0].Kind != KindOrderConfirmation || events[0].To != "asha@x.com" {
		t.Fatalf("unexpected confirmation event: %+v", events[0])
	}
	if events[1].Kind != KindAdminAlert || events[1].To != "admin@atrangi.com" {
		t.Fatalf("unexpected admin event: %+v", events[1])
	}
	if events[0].OrderID != "ord-1" || events[0].Total != 192000 || events[0].FirstName != "Asha" {
		t.Fatalf("order fields must be denormalized into the event: %+v", events[0])
	}
}

func TestOrderEventsNoAdminInbox(t *testing.T) {
	events := OrderEvents(testOrder(), "asha@x.com", "")
	if len(events) != 1 || events[0].Kind != KindOrderConfirmation {
		t.Fatalf("expected confirmation only, got %+v", events)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(Event{Kind: KindOrderConfirmation, OrderID: "ord-1"}); got != "Order Confirmation - #ord-1" {
		t.Fatalf("unexpected subject: %q", got)
	}
	if got := Subject(Event{Kind: KindAdminAlert, OrderID: "ord-1"}); got != "New Order Received - #ord-1" {
		t.Fatalf("unexpected subject: %q", got)
	}
}

func TestRedisNotifierEnqueuesFanOut(t *testing.T) {
	mr := miniredis.RunT(t)
	notifier, err := NewRedisNotifier(RedisConfig{
		Addr:       mr.Addr(),
		Stream:     "test:notify",
		AdminEmail: "admin@atrangi.com",
	})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	notifier.OrderPlaced(context.Background(), testOrder(), "asha@x.com")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	msgs, err := client.XRange(context.Background(), "test:notify", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(msgs))
	}

	ev, attempts, ok := decodeEvent(msgs[0])
	if !ok {
		t.Fatalf("decode failed for %+v", msgs[0])
	}
	if attempts != 0 {
		t.Fatalf("fresh events carry zero attempts, got %d", attempts)
	}
	if ev.Kind != KindOrderConfirmation || ev.To != "asha@x.com" || ev.OrderID != "ord-1" || ev.Total != 192000 {
		t.Fatalf("unexpected decoded event: %+v", ev)
	}
	if ev.FirstName != "Asha" || ev.LastName != "Rao" {
		t.Fatalf("shipping name must round-trip, got %+v", ev)
	}
}

func TestDecodeEventRejectsMalformed(t *testing.T) {
	if _, _, ok := decodeEvent(redis.XMessage{Values: map[string]any{"kind": KindAdminAlert}}); ok {
		t.Fatalf("event without recipient must be rejected")
	}
	if _, _, ok := decodeEvent(redis.XMessage{Values: map[string]any{"to": "x@x.com"}}); ok {
		t.Fatalf("event without kind must be rejected")
	}
}

func TestNewRedisNotifierRequiresAddr(t *testing.T) {
	if _, err := NewRedisNotifier(RedisConfig{}); err == nil {
		t.Fatalf("expected constructor error for empty addr")
	}
}
