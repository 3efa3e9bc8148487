package models

import (
	"encoding/json"
	"time"
)

const (
	AuditBookingNegotiationUpdate = "BOOKING_NEGOTIATION_UPDATE"
	AuditBookingOwnerPayoutLocked = "BOOKING_OWNER_PAYOUT_LOCKED"
	AuditBookingUserPriceLocked   = "BOOKING_USER_PRICE_LOCKED"
	AuditBookingCancelled         = "BOOKING_CANCELLED"
	AuditBookingCompleted         = "BOOKING_COMPLETED"
	AuditBusApproved              = "BUS_APPROVED"
	AuditBusRejected              = "BUS_REJECTED"
	AuditOwnerApproved            = "OWNER_APPROVED"
)

const (
	EntityBooking      = "Booking"
	EntityBus          = "Bus"
	EntityOwnerProfile = "OwnerProfile"
)

// AuditEntry rows are insert-only.
type AuditEntry struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type AuditFilter struct {
	Entity   string
	EntityID string
	Limit    int
}
