package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims issued to SmartMediShop callers.
type Claims struct {
	jwt.RegisteredClaims
	Roles  []string  `json:"roles"`
	UserID uuid.UUID `json:"user_id"`
}

// HasRole reports whether the claims carry role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the claims carry at least one of roles.
func (c Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

const (
	RoleAdmin   = "admin"
	RoleAnalyst = "fraud_analyst"
	RoleService = "service"
	RoleAuditor = "auditor"
)
