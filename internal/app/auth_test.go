package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"atrangi/internal/googletoken"
	"atrangi/internal/store"
	"atrangi/internal/token"
	"atrangi/pkg/domain"
)

type captureNotifier struct {
	mu     sync.Mutex
	orders []domain.Order
	emails []string
}

func (c *captureNotifier) OrderPlaced(_ context.Context, order domain.Order, userEmail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = append(c.orders, order)
	c.emails = append(c.emails, userEmail)
}

type fakeGoogle struct {
	identity googletoken.Identity
	err      error
}

func (f *fakeGoogle) Verify(string) (googletoken.Identity, error) {
	return f.identity, f.err
}

func newTestApp(t *testing.T) (*App, *store.MemoryStore, *captureNotifier) {
	t.Helper()
	memory := store.NewMemoryStore()
	issuer, err := token.New("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	notifier := &captureNotifier{}
	a, err := New(Config{
		Store:      memory,
		Sessions:   issuer,
		Notifier:   notifier,
		AdminEmail: "admin@atrangi.com",
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, memory, notifier
}

func TestSignUpDefaultsToUserRole(t *testing.T) {
	a, _, _ := newTestApp(t)
	user, tokenStr, err := a.SignUp("Asha", "a@x.com", "p")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if user.Avatar == "" {
		t.Fatalf("expected default avatar to be assigned")
	}
	if user.PasswordHash == "" {
		t.Fatalf("expected password hash to be stored")
	}
	resolved, ok := a.UserFromToken(tokenStr)
	if !ok || resolved.ID != user.ID {
		t.Fatalf("token must resolve back to the new user")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, _, err := a.SignUp("Asha", "a@x.com", "p"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, _, err := a.SignUp("Other", "a@x.com", "q")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err.Error() != "User already exists" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestSignUpAdminEmailPromotion(t *testing.T) {
	a, _, _ := newTestApp(t)
	user, _, err := a.SignUp("Admin", "admin@atrangi.com", "p")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected configured admin email to get admin role, got %s", user.Role)
	}
}

func TestSignUpRequiresFields(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, _, err := a.SignUp("", "a@x.com", "p"); !errors.Is(err, ErrSignupFieldsRequired) {
		t.Fatalf("expected ErrSignupFieldsRequired, got %v", err)
	}
	if _, _, err := a.SignUp("Asha", "", "p"); !errors.Is(err, ErrSignupFieldsRequired) {
		t.Fatalf("expected ErrSignupFieldsRequired, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, _, err := a.SignUp("Asha", "a@x.com", "right"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, _, err := a.Login("a@x.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	_, _, err = a.Login("unknown@x.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	user, _, err := a.Login("a@x.com", "right")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestGoogleSignInCreatesAccountOnFirstSight(t *testing.T) {
	a, memory, _ := newTestApp(t)
	a.google = &fakeGoogle{identity: googletoken.Identity{
		Subject: "g-1",
		Email:   "g@x.com",
		Name:    "Gee",
		Picture: "https://example.com/pic.png",
	}}

	user, tokenStr, err := a.GoogleSignIn("credential")
	if err != nil {
		t.Fatalf("google sign-in: %v", err)
	}
	if user.Email != "g@x.com" || user.Name != "Gee" || user.Avatar != "https://example.com/pic.png" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if user.PasswordHash == "" {
		t.Fatalf("social accounts still get an unguessable password hash")
	}
	if _, ok := a.UserFromToken(tokenStr); !ok {
		t.Fatalf("token must resolve")
	}

	// second sign-in reuses the account
	again, _, err := a.GoogleSignIn("credential")
	if err != nil {
		t.Fatalf("second sign-in: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same account, got %s vs %s", again.ID, user.ID)
	}
	users, _ := memory.ListUsers()
	if len(users) != 1 {
		t.Fatalf("expected one account, got %d", len(users))
	}
}

func TestGoogleSignInRejectsBadCredential(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.google = &fakeGoogle{err: errors.New("bad token")}
	if _, _, err := a.GoogleSignIn("nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	a, _, _ := newTestApp(t)
	user, _, err := a.SignUp("Asha", "a@x.com", "p")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	name := "Asha R"
	addresses := []domain.Address{{Line1: "1 Gallery Rd", City: "Mumbai", Zip: "400001"}}
	updated, err := a.UpdateProfile(user.ID, ProfileUpdate{Name: &name, Addresses: &addresses})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Asha R" {
		t.Fatalf("expected name update, got %q", updated.Name)
	}
	if updated.Avatar != user.Avatar {
		t.Fatalf("avatar must be unchanged when not sent")
	}
	if len(updated.Addresses) != 1 || updated.Addresses[0].City != "Mumbai" {
		t.Fatalf("expected address book update, got %+v", updated.Addresses)
	}
}

func TestSyncReplacesSnapshots(t *testing.T) {
	a, _, _ := newTestApp(t)
	user, _, err := a.SignUp("Asha", "a@x.com", "p")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	cart := []domain.CartItem{{Product: domain.Product{ID: 1, Title: "Piece"}, Quantity: 2}}
	if err := a.Sync(user.ID, &cart, nil); err != nil {
		t.Fatalf("sync cart: %v", err)
	}
	stored, err := a.GetUser(user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(stored.Cart) != 1 || stored.Cart[0].Quantity != 2 {
		t.Fatalf("expected cart snapshot stored, got %+v", stored.Cart)
	}
	if len(stored.Wishlist) != 0 {
		t.Fatalf("wishlist must be untouched when not sent")
	}

	// the server copy is a full replacement, not a merge
	empty := []domain.CartItem{}
	if err := a.Sync(user.ID, &empty, nil); err != nil {
		t.Fatalf("sync empty cart: %v", err)
	}
	stored, _ = a.GetUser(user.ID)
	if len(stored.Cart) != 0 {
		t.Fatalf("expected cart replaced with empty, got %+v", stored.Cart)
	}
}
