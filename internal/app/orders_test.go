package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"atrangi/internal/store"
	"atrangi/internal/token"
	"atrangi/pkg/domain"
)

func cartItem(p domain.Product, qty int) domain.CartItem {
	return domain.CartItem{Product: p, Quantity: qty}
}

func TestCreateOrderMarksSoldAndNotifies(t *testing.T) {
	a, _, notifier := newTestApp(t)
	seedCatalog(t, a)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com", Role: domain.RoleUser}
	piece, _ := a.GetProduct(1)

	order, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items:         []domain.CartItem{cartItem(piece, 1)},
		Total:         192000,
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID == "" || order.Status != domain.OrderProcessing {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(order.Timeline) != 2 || order.Timeline[0].Status != "Order Placed" || order.Timeline[1].Status != "Processing" {
		t.Fatalf("unexpected timeline: %+v", order.Timeline)
	}

	sold, _ := a.GetProduct(1)
	if sold.InStock {
		t.Fatalf("piece must be marked sold after purchase")
	}

	if len(notifier.orders) != 1 || notifier.orders[0].ID != order.ID {
		t.Fatalf("expected one notification for the order, got %+v", notifier.orders)
	}
	if notifier.emails[0] != "buyer@x.com" {
		t.Fatalf("notification must carry the buyer email, got %q", notifier.emails[0])
	}
}

func TestCreateOrderRejectsEmpty(t *testing.T) {
	a, _, _ := newTestApp(t)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}
	_, err := a.CreateOrder(context.Background(), buyer, OrderInput{})
	if !IsInvalidState(err) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestCreateOrderMissingProduct(t *testing.T) {
	a, _, notifier := newTestApp(t)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}
	ghost := domain.Product{ID: 404, Title: "Vanished"}

	_, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{cartItem(ghost, 1)},
	})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err.Error() != "Product Vanished not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if len(notifier.orders) != 0 {
		t.Fatalf("failed orders must not notify")
	}
}

func TestCreateOrderChecksAllBeforeMarking(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}
	inStock, _ := a.GetProduct(1)
	soldOut, _ := a.GetProduct(4)

	_, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{cartItem(inStock, 1), cartItem(soldOut, 1)},
	})
	if !IsInvalidState(err) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
	if err.Error() != `Sorry, "Cerulean Dreams" is already sold out.` {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	// the in-stock item must not have been touched
	after, _ := a.GetProduct(1)
	if !after.InStock {
		t.Fatalf("failed order must not mark any piece sold")
	}
}

func TestCreateOrderRejectsStaleCartSnapshot(t *testing.T) {
	a, memory, _ := newTestApp(t)
	seedCatalog(t, a)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}
	piece, _ := a.GetProduct(1)

	// another checkout bought the piece after this cart was built
	if err := memory.SetProductStock(1, false); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	stale := piece
	stale.InStock = true
	if _, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{cartItem(stale, 1)},
	}); !IsInvalidState(err) {
		t.Fatalf("expected InvalidState for a sold piece, got %v", err)
	}
}

// staleStockStore reports one piece as in stock at check time regardless of
// the live record, reopening the window between the stock check and the mark.
type staleStockStore struct {
	store.Store
	staleID int64
}

func (s *staleStockStore) GetProduct(id int64) (domain.Product, bool, error) {
	p, ok, err := s.Store.GetProduct(id)
	if ok && id == s.staleID {
		p.InStock = true
	}
	return p, ok, err
}

func newStaleStockApp(t *testing.T, twoPhase bool, staleID int64) (*App, *store.MemoryStore) {
	t.Helper()
	memory := store.NewMemoryStore()
	issuer, err := token.New("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	a, err := New(Config{
		Store:         &staleStockStore{Store: memory, staleID: staleID},
		Sessions:      issuer,
		TwoPhaseStock: twoPhase,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, memory
}

func TestCreateOrderAtomicModeRejectsLostRace(t *testing.T) {
	a, memory := newStaleStockApp(t, false, 1)
	if err := memory.SaveProduct(domain.Product{ID: 1, Title: "Ethereal Horizons", InStock: false}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}

	// the stock check sees the stale snapshot, the claim sees the sold record
	_, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{cartItem(domain.Product{ID: 1, Title: "Ethereal Horizons"}, 1)},
	})
	if !IsInvalidState(err) {
		t.Fatalf("expected InvalidState when the claim is lost, got %v", err)
	}
	if err.Error() != `Sorry, "Ethereal Horizons" is already sold out.` {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	orders, _ := memory.ListOrders()
	if len(orders) != 0 {
		t.Fatalf("lost race must not persist an order, got %+v", orders)
	}
}

func TestCreateOrderTwoPhaseModeOversells(t *testing.T) {
	a, memory := newStaleStockApp(t, true, 1)
	if err := memory.SaveProduct(domain.Product{ID: 1, Title: "Ethereal Horizons", InStock: false}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}

	// same stale window, but the unconditional mark never notices the loss
	order, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{cartItem(domain.Product{ID: 1, Title: "Ethereal Horizons", Price: 192000}, 1)},
	})
	if err != nil {
		t.Fatalf("two-phase mode must accept the order: %v", err)
	}
	if order.ID == "" {
		t.Fatalf("expected a persisted order")
	}
	orders, _ := memory.ListOrders()
	if len(orders) != 1 {
		t.Fatalf("expected the oversold order to persist, got %d", len(orders))
	}
	sold, _, _ := memory.GetProduct(1)
	if sold.InStock {
		t.Fatalf("piece must stay marked sold")
	}
}

func TestCreateOrderAtomicLostRaceLeavesEarlierItemsMarked(t *testing.T) {
	a, memory := newStaleStockApp(t, false, 2)
	if err := memory.SaveProduct(domain.Product{ID: 1, Title: "Golden Fracture", InStock: true}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := memory.SaveProduct(domain.Product{ID: 2, Title: "Silent Void", InStock: false}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}

	// item 1 claims cleanly, then item 2 loses its claim
	_, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{
			cartItem(domain.Product{ID: 1, Title: "Golden Fracture"}, 1),
			cartItem(domain.Product{ID: 2, Title: "Silent Void"}, 1),
		},
	})
	if !IsInvalidState(err) {
		t.Fatalf("expected InvalidState, got %v", err)
	}

	// earlier claims are not rolled back and no order persists
	first, _, _ := memory.GetProduct(1)
	if first.InStock {
		t.Fatalf("earlier item must stay marked sold after a later lost claim")
	}
	orders, _ := memory.ListOrders()
	if len(orders) != 0 {
		t.Fatalf("failed order must not persist, got %+v", orders)
	}
}

func TestCreateOrderComputesTotalWhenOmitted(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}
	p1, _ := a.GetProduct(1)
	p2, _ := a.GetProduct(2)

	order, err := a.CreateOrder(context.Background(), buyer, OrderInput{
		Items: []domain.CartItem{cartItem(p1, 2), cartItem(p2, 0)},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	want := p1.Price*2 + p2.Price // zero quantity counts as one
	if order.Total != want {
		t.Fatalf("expected computed total %v, got %v", want, order.Total)
	}
}

func TestOrdersNewestFirstAndOwnership(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com", Role: domain.RoleUser}
	other := domain.User{ID: "u-2", Email: "other@x.com", Role: domain.RoleUser}
	admin := domain.User{ID: "u-3", Email: "admin@x.com", Role: domain.RoleAdmin}

	p1, _ := a.GetProduct(1)
	p2, _ := a.GetProduct(2)
	first, err := a.CreateOrder(context.Background(), buyer, OrderInput{Items: []domain.CartItem{cartItem(p1, 1)}})
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	second, err := a.CreateOrder(context.Background(), buyer, OrderInput{Items: []domain.CartItem{cartItem(p2, 1)}})
	if err != nil {
		t.Fatalf("second order: %v", err)
	}

	mine, err := a.MyOrders(buyer.ID)
	if err != nil {
		t.Fatalf("my orders: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != second.ID || mine[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", mine)
	}

	if _, err := a.GetOrder(other, first.ID); err == nil {
		t.Fatalf("expected other user to be forbidden")
	}
	if _, err := a.GetOrder(admin, first.ID); err != nil {
		t.Fatalf("admin must read any order: %v", err)
	}
	if _, err := a.GetOrder(buyer, "missing"); !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateOrderStatusAppendsTimeline(t *testing.T) {
	a, _, _ := newTestApp(t)
	seedCatalog(t, a)
	buyer := domain.User{ID: "u-1", Email: "buyer@x.com"}
	p1, _ := a.GetProduct(1)
	order, err := a.CreateOrder(context.Background(), buyer, OrderInput{Items: []domain.CartItem{cartItem(p1, 1)}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	updated, err := a.UpdateOrderStatus(order.ID, "Shipped")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderStatus("Shipped") {
		t.Fatalf("expected status Shipped, got %s", updated.Status)
	}
	if len(updated.Timeline) != 3 || updated.Timeline[2].Status != "Shipped" {
		t.Fatalf("expected timeline append, got %+v", updated.Timeline)
	}

	// free text passes through untouched
	updated, err = a.UpdateOrderStatus(order.ID, "Lost in the Bermuda Triangle")
	if err != nil {
		t.Fatalf("free-text status: %v", err)
	}
	if !strings.Contains(string(updated.Status), "Bermuda") {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	if _, err := a.UpdateOrderStatus(order.ID, "  "); err != ErrStatusRequired {
		t.Fatalf("expected ErrStatusRequired, got %v", err)
	}
	if _, err := a.UpdateOrderStatus("missing", "Shipped"); !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
