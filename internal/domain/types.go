package domain

import "strings"

// Role is the closed set of caller roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOwner    Role = "OWNER"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole accepts any casing; the realtime handshake sends lower-case roles.
// "user" is the customer portal's name for CUSTOMER.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleOwner):
		return RoleOwner, true
	case string(RoleCustomer), "USER":
		return RoleCustomer, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleCustomer:
		return true
	default:
		return false
	}
}

// RequestContext carries the authenticated caller.
type RequestContext struct {
	UserID  string `json:"userId"`
	Role    Role   `json:"role"`
	OwnerID string `json:"ownerId,omitempty"`
}
