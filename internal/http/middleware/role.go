package middleware

import (
	"strings"

	"connection-travels/internal/domain"
)

// Roles is the set of roles allowed on one route.
type Roles []domain.Role

func (r Roles) allows(role domain.Role) bool {
	for _, want := range r {
		if want == role {
			return true
		}
	}
	return false
}

// RouteRoles maps "METHOD /full/path/:param" to the roles allowed on it.
type RouteRoles map[string]Roles

func (t RouteRoles) lookup(method, fullPath string) (Roles, bool) {
	if fullPath == "" {
		return nil, false
	}
	roles, ok := t[strings.ToUpper(method)+" "+fullPath]
	return roles, ok
}

// RequireRoles builds a table entry.
func RequireRoles(roles ...domain.Role) Roles {
	return Roles(roles)
}
