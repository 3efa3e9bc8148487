package realtime

import "strings"

// Audience names a room. Owners get one room each.
type Audience string

const (
	Admins Audience = "admins"
	Users  Audience = "users"

	ownerPrefix = "owner:"
)

func Owner(ownerID string) Audience {
	return Audience(ownerPrefix + ownerID)
}

// OwnerID returns the id behind an owner:{id} audience.
func (a Audience) OwnerID() (string, bool) {
	id, ok := strings.CutPrefix(string(a), ownerPrefix)
	return id, ok && id != ""
}

func (a Audience) Valid() bool {
	if a == Admins || a == Users {
		return true
	}
	_, ok := a.OwnerID()
	return ok
}

// routingKey maps owner:abc + booking:confirmed to owner.abc.booking.confirmed.
func routingKey(a Audience, event string) string {
	return strings.ReplaceAll(string(a), ":", ".") + "." + strings.ReplaceAll(event, ":", ".")
}
