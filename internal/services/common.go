package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
	"connection-travels/internal/realtime"
	"connection-travels/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Clock and ID source shared by the services; zero values fall back to UTC now and UUIDv4.
type Clock func() time.Time
type IDSource func() string

func (c Clock) now() time.Time {
	if c != nil {
		return c().UTC()
	}
	return utils.NowUTC()
}

func (f IDSource) next() string {
	if f != nil {
		return f()
	}
	return uuid.NewString()
}

// lookupErr maps a repository read error.
func lookupErr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return domain.InternalError{Msg: "load " + resource, Err: err}
}

func writeErr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return domain.InternalError{Msg: "save " + resource, Err: err}
}

type auditor struct {
	store AuditStore
	now   Clock
	ids   IDSource
}

// record appends one audit row with input as its JSON snapshot.
func (a auditor) record(ctx context.Context, actorID, action, entity, entityID string, input any) error {
	if a.store == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return domain.InternalError{Msg: "encode audit payload", Err: err}
	}
	entry := models.AuditEntry{
		ID:        a.ids.next(),
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Payload:   payload,
		CreatedAt: a.now.now(),
	}
	if err := a.store.Append(ctx, entry); err != nil {
		return domain.InternalError{Msg: "write audit log", Err: err}
	}
	return nil
}

type notifier struct {
	pub       realtime.Publisher
	requestID string
}

// send is fire-and-forget: failures are logged and counted, never returned.
func (n notifier) send(ctx context.Context, audience realtime.Audience, event string, payload any) {
	if n.pub == nil {
		return
	}
	if err := n.pub.Publish(ctx, audience, event, payload); err != nil {
		realtime.RecordFailure("fanout")
		utils.LogFailure(n.requestID, "realtime", "publish", err,
			zap.String("event", event), zap.String("audience", string(audience)))
	}
}

// booking projects b for each audience before sending.
func (n notifier) booking(ctx context.Context, b models.Booking, event string, audiences ...realtime.Audience) {
	for _, a := range audiences {
		n.send(ctx, a, event, bookingPayload(a, b))
	}
}

func bookingPayload(a realtime.Audience, b models.Booking) any {
	switch {
	case a == realtime.Admins:
		return b
	case a == realtime.Users:
		return b.ForCustomer()
	default:
		return b.ForOwner()
	}
}
