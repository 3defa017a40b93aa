package admin

import (
	"strings"
	"time"
)

// RoleSuperAdmin is the privileged role. Matching is case-insensitive;
// storage always holds this canonical casing after a sweep.
const RoleSuperAdmin = "super_admin"

// User is an account row in the auth database. Only the fields the
// bootstrap touches are modeled; the web application owns the rest.
type User struct {
	UserID         string
	Username       string
	Email          string
	Mobile         string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

// IsSuperAdmin reports whether the user holds the privileged role under
// case-insensitive comparison.
func (u *User) IsSuperAdmin() bool {
	return strings.EqualFold(u.Role, RoleSuperAdmin)
}
