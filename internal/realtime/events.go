package realtime

import (
	"encoding/json"
	"time"
)

const (
	EventQuoteRequested      = "booking:quote-requested"
	EventNegotiationUpdated  = "booking:negotiation-updated"
	EventOwnerPayoutLocked   = "booking:owner-payout-locked"
	EventUserPriceLocked     = "booking:user-price-locked"
	EventBookingConfirmed    = "booking:confirmed"
	EventBookingCancelled    = "booking:cancelled"
	EventBookingCompleted    = "booking:completed"
	EventBookingOwnerConfirm = "booking:owner-confirmed"
	EventBookingUserConfirm  = "booking:user-confirmed"

	EventBusCreated  = "bus:created"
	EventBusUpdated  = "bus:updated"
	EventBusApproved = "bus:approved"
	EventBusRejected = "bus:rejected"
	EventBusRemoved  = "bus:removed"

	EventOwnerApproved = "owner:approved"
)

// Message is the frame written to sockets and the AMQP body.
type Message struct {
	Event    string          `json:"event"`
	Audience Audience        `json:"audience"`
	Payload  json.RawMessage `json:"payload"`
	SentAt   time.Time       `json:"sentAt"`
}

func newMessage(audience Audience, event string, payload any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Event: event, Audience: audience, Payload: raw, SentAt: now.UTC()})
}
