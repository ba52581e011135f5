package auth

import (
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a token.
type AccessTokenPayload struct {
	UserID  int64
	Role    enums.UserRole
	PlaceID *int64
	JTI     string
}

// AccessTokenClaims is the typed JWT issued to admin clients. The bearer
// string shape matches the legacy API; only the internal construction
// changed (signed, expiring).
type AccessTokenClaims struct {
	UserID  int64          `json:"user_id"`
	Role    enums.UserRole `json:"role"`
	PlaceID *int64         `json:"place_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller derived from a verified token, used by
// services to authorize mutations. A nil *Actor means the legacy
// open-mutations compatibility mode is active and no check is performed.
type Actor struct {
	UserID  int64
	Role    enums.UserRole
	PlaceID *int64
}

// IsSystemAdmin reports whether the actor holds the system-wide role.
func (a *Actor) IsSystemAdmin() bool {
	return a != nil && a.Role == enums.RoleSystemAdmin
}

// CanManagePlace reports whether the actor may mutate resources belonging to
// the given place. SystemAdmins may mutate anything; CafeAdmins only their
// own place. Nil actors (legacy mode) are unrestricted.
func (a *Actor) CanManagePlace(placeID int64) bool {
	if a == nil {
		return true
	}
	if a.Role == enums.RoleSystemAdmin {
		return true
	}
	return a.Role == enums.RoleCafeAdmin && a.PlaceID != nil && *a.PlaceID == placeID
}
