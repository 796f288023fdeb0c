package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"atrangi/internal/googletoken"
	"atrangi/internal/notify"
	"atrangi/internal/store"
	"atrangi/internal/token"
	"atrangi/internal/util"
	"atrangi/pkg/auth"
	"atrangi/pkg/domain"
)

// defaultAvatarURL is assigned to password signups; Google signups keep their
// profile picture.
const defaultAvatarURL = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?auto=format&fit=crop&q=80&w=150"

// GoogleVerifier validates a Google ID token and returns the asserted
// identity. Satisfied by googletoken.Verifier.
type GoogleVerifier interface {
	Verify(credential string) (googletoken.Identity, error)
}

// Config holds runtime wiring for the core application.
type Config struct {
	Store         store.Store
	Sessions      *token.Issuer
	Google        GoogleVerifier
	Notifier      notify.Notifier
	AdminEmail    string
	TwoPhaseStock bool
}

// App is the storefront engine: accounts, catalog, orders, commissions and
// reviews, wired over a Store and a Notifier.
type App struct {
	store         store.Store
	sessions      *token.Issuer
	google        GoogleVerifier
	notifier      notify.Notifier
	adminEmail    string
	twoPhaseStock bool
}

// New constructs the application. Store and Sessions are required; Google and
// Notifier are optional surfaces.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session issuer is required")
	}
	return &App{
		store:         cfg.Store,
		sessions:      cfg.Sessions,
		google:        cfg.Google,
		notifier:      cfg.Notifier,
		adminEmail:    strings.TrimSpace(strings.ToLower(cfg.AdminEmail)),
		twoPhaseStock: cfg.TwoPhaseStock,
	}, nil
}

// SignUp registers a new account with the default user role and issues a
// session token.
func (a *App) SignUp(name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", ErrSignupFieldsRequired
	}
	_, exists, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrUserExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user, err := a.createUser(name, email, passwordHash, defaultAvatarURL)
	if err != nil {
		return domain.User{}, "", err
	}
	return a.issueSession(user)
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrLoginFieldsRequired
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	return a.issueSession(user)
}

// GoogleSignIn verifies a Google ID token and signs the account in, creating
// it on first sight. Socially created accounts get an unguessable password so
// the password login path stays closed until the user sets one.
func (a *App) GoogleSignIn(credential string) (domain.User, string, error) {
	if a.google == nil {
		return domain.User{}, "", errors.New("google sign-in is not configured")
	}
	identity, err := a.google.Verify(credential)
	if err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}
	email := strings.TrimSpace(strings.ToLower(identity.Email))
	if email == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		passwordHash, err := auth.HashPassword(util.NewID())
		if err != nil {
			return domain.User{}, "", fmt.Errorf("hash password: %w", err)
		}
		user, err = a.createUser(identity.Name, email, passwordHash, identity.Picture)
		if err != nil {
			return domain.User{}, "", err
		}
	}
	return a.issueSession(user)
}

// UserFromToken resolves a session token to the live user record.
func (a *App) UserFromToken(tokenStr string) (domain.User, bool) {
	claims, err := a.sessions.Verify(tokenStr)
	if err != nil {
		return domain.User{}, false
	}
	user, ok, err := a.store.GetUserByID(claims.UserID)
	if err != nil || !ok {
		return domain.User{}, false
	}
	return user, true
}

// GetUser returns the user by id.
func (a *App) GetUser(id string) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, NotFoundf("User not found")
	}
	return user, nil
}

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name      *string
	Avatar    *string
	Addresses *[]domain.Address
}

// UpdateProfile applies a partial profile update and returns the fresh record.
func (a *App) UpdateProfile(userID string, upd ProfileUpdate) (domain.User, error) {
	user, err := a.GetUser(userID)
	if err != nil {
		return domain.User{}, err
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Avatar != nil && strings.TrimSpace(*upd.Avatar) != "" {
		user.Avatar = strings.TrimSpace(*upd.Avatar)
	}
	if upd.Addresses != nil {
		user.Addresses = *upd.Addresses
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Sync replaces the server-side cart/wishlist snapshots with the client's.
// The server copy is authoritative for later reads; nil slices mean the
// client did not send that snapshot.
func (a *App) Sync(userID string, cart *[]domain.CartItem, wishlist *[]domain.Product) error {
	user, err := a.GetUser(userID)
	if err != nil {
		return err
	}
	if cart != nil {
		user.Cart = *cart
	}
	if wishlist != nil {
		user.Wishlist = *wishlist
	}
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("sync user: %w", err)
	}
	return nil
}

func (a *App) issueSession(user domain.User) (domain.User, string, error) {
	sessionToken, err := a.sessions.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session token: %w", err)
	}
	return user, sessionToken, nil
}

func (a *App) createUser(name, email, passwordHash, avatar string) (domain.User, error) {
	role := domain.RoleUser
	if a.adminEmail != "" && email == a.adminEmail {
		role = domain.RoleAdmin
	}
	user := domain.User{
		ID:           util.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Avatar:       avatar,
		Cart:         []domain.CartItem{},
		Wishlist:     []domain.Product{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}
