package app

import (
	"fmt"

	"atrangi/pkg/domain"
)

// ListUsers returns every account, newest first. Admin surface; password
// hashes never serialize.
func (a *App) ListUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// UpdateUserRole assigns one of the five known roles to a user.
func (a *App) UpdateUserRole(userID, role string) (domain.User, error) {
	if !domain.ValidRole(role) {
		return domain.User{}, ErrInvalidRole
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, NotFoundf("User not found")
	}
	user.Role = domain.Role(role)
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
