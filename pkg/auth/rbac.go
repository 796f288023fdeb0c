package auth

import (
	"errors"

	"atrangi/pkg/domain"
)

// Action represents a gated operation on a resource.
type Action string

const (
	ActionArtistCreate  Action = "artist.create"
	ActionArtistUpdate  Action = "artist.update"
	ActionArtistDelete  Action = "artist.delete"
	ActionProductCreate Action = "product.create"
	ActionProductUpdate Action = "product.update"
	ActionProductDelete Action = "product.delete"
	ActionOrderViewAll  Action = "order.view_all"
	ActionOrderUpdate   Action = "order.update_status"
	ActionCommissionMod Action = "commission.moderate"
	ActionUserAdmin     Action = "user.admin"
)

// matrix is the single source of truth for role permissions. It is consumed by
// both the API layer and client-side permission gating so the two cannot
// drift. Field-level product rules live in FilterProductUpdate, one layer
// below this route gate.
var matrix = map[Action]map[domain.Role]bool{
	ActionArtistCreate: {
		domain.RoleAdmin:        true,
		domain.RoleCreativeHead: true,
	},
	ActionArtistUpdate: {
		domain.RoleAdmin:        true,
		domain.RoleCreativeHead: true,
		domain.RoleContentTeam:  true,
	},
	ActionArtistDelete: {
		domain.RoleAdmin:        true,
		domain.RoleCreativeHead: true,
	},
	ActionProductCreate: {
		domain.RoleAdmin:        true,
		domain.RoleCreativeHead: true,
	},
	ActionProductUpdate: {
		domain.RoleAdmin:        true,
		domain.RoleCreativeHead: true,
		domain.RoleContentTeam:  true,
		domain.RoleMarketingEM:  true,
	},
	ActionProductDelete: {
		domain.RoleAdmin:        true,
		domain.RoleCreativeHead: true,
	},
	ActionOrderViewAll: {
		domain.RoleAdmin: true,
	},
	ActionOrderUpdate: {
		domain.RoleAdmin: true,
	},
	ActionCommissionMod: {
		domain.RoleAdmin:       true,
		domain.RoleMarketingEM: true,
	},
	ActionUserAdmin: {
		domain.RoleAdmin: true,
	},
}

// Allowed checks a role/action pair against the canonical matrix. Unknown
// actions and unknown roles are both denied.
func Allowed(role domain.Role, action Action) bool {
	perms, ok := matrix[action]
	if !ok {
		return false
	}
	return perms[role]
}

// ErrMarketingFeaturedOnly is returned when a marketing update carries nothing
// the role may touch; the caller surfaces it as Forbidden, not as a no-op.
var ErrMarketingFeaturedOnly = errors.New("Marketing can only update featured status.")

// Product payload fields the content team must not touch.
var contentTeamBlocked = map[string]bool{
	"price":   true,
	"inStock": true,
}

// FilterProductUpdate applies the per-role field policy to a partial product
// update payload (keys are JSON field names). The asymmetry is deliberate and
// part of the contract: content_team has forbidden fields silently stripped,
// marketing_em has everything except "featured" stripped and fails outright
// when that leaves the payload empty. Admin and creative_head pass through
// untouched.
func FilterProductUpdate(role domain.Role, updates map[string]any) (map[string]any, error) {
	switch role {
	case domain.RoleAdmin, domain.RoleCreativeHead:
		return updates, nil
	case domain.RoleContentTeam:
		filtered := make(map[string]any, len(updates))
		for k, v := range updates {
			if contentTeamBlocked[k] {
				continue
			}
			filtered[k] = v
		}
		return filtered, nil
	case domain.RoleMarketingEM:
		filtered := make(map[string]any, 1)
		if v, ok := updates["featured"]; ok {
			filtered["featured"] = v
		}
		if len(filtered) == 0 {
			return nil, ErrMarketingFeaturedOnly
		}
		return filtered, nil
	default:
		return nil, errors.New("role may not update products")
	}
}
