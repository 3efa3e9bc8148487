package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"connection-travels/internal/db"
	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
	"connection-travels/internal/realtime"
	"connection-travels/internal/utils"
)

// BusService is the approval gate in front of bookable inventory.
type BusService struct {
	Buses     BusStore
	Users     UserStore
	Audit     AuditStore
	Publisher realtime.Publisher
	Now       Clock
	NewID     IDSource
	RequestID string
}

func (s BusService) WithRequestID(id string) BusService {
	s.RequestID = id
	return s
}

func (s BusService) notify() notifier {
	return notifier{pub: s.Publisher, requestID: s.RequestID}
}

func (s BusService) auditor() auditor {
	return auditor{store: s.Audit, now: s.Now, ids: s.NewID}
}

type removedBus struct {
	ID string `json:"id"`
}

type decisionInput struct {
	Note *string `json:"note"`
}

func (s BusService) load(ctx context.Context, id string) (models.Bus, error) {
	if strings.TrimSpace(id) == "" {
		return models.Bus{}, domain.ValidationError{Field: "busId", Msg: "is required"}
	}
	bus, err := s.Buses.GetByID(ctx, id)
	if err != nil {
		return models.Bus{}, lookupErr("bus", err)
	}
	return bus, nil
}

// ApproveBus makes a bus bookable and announces it to the customer portal.
func (s BusService) ApproveBus(ctx context.Context, adminID, busID string, note *string) (models.Bus, error) {
	return s.decide(ctx, adminID, busID, note, true)
}

// RejectBus takes a bus out of the catalogue.
func (s BusService) RejectBus(ctx context.Context, adminID, busID string, note *string) (models.Bus, error) {
	return s.decide(ctx, adminID, busID, note, false)
}

func (s BusService) decide(ctx context.Context, adminID, busID string, note *string, approve bool) (models.Bus, error) {
	bus, err := s.load(ctx, busID)
	if err != nil {
		return models.Bus{}, err
	}
	status, action, event := models.ApprovalRejected, models.AuditBusRejected, realtime.EventBusRejected
	if approve {
		status, action, event = models.ApprovalApproved, models.AuditBusApproved, realtime.EventBusApproved
	}
	if note != nil {
		note = utils.NilIfBlank(*note)
	}
	now := s.Now.now()
	if err := s.Buses.SetApproval(ctx, bus.ID, status, approve, note, now); err != nil {
		return models.Bus{}, writeErr("bus", err)
	}
	bus.ApprovalStatus, bus.Active, bus.ApprovalNote, bus.UpdatedAt = status, approve, note, now

	auditErr := s.auditor().record(ctx, adminID, action, models.EntityBus, bus.ID, decisionInput{Note: note})

	utils.LogEvent(s.RequestID, "bus", strings.ToLower(string(status)), fmt.Sprintf("bus_id=%s owner_id=%s", bus.ID, bus.OwnerID))
	n := s.notify()
	n.send(ctx, realtime.Owner(bus.OwnerID), event, bus)
	n.send(ctx, realtime.Admins, event, bus)
	if approve {
		n.send(ctx, realtime.Users, realtime.EventBusCreated, bus)
	} else {
		n.send(ctx, realtime.Users, realtime.EventBusRemoved, removedBus{ID: bus.ID})
	}
	return bus, auditErr
}

// ListPendingBuses is the admin review queue, oldest first.
func (s BusService) ListPendingBuses(ctx context.Context) ([]models.Bus, error) {
	list, err := s.Buses.ListByApproval(ctx, models.ApprovalPending)
	if err != nil {
		return nil, domain.InternalError{Msg: "list pending buses", Err: err}
	}
	return list, nil
}

// ListActiveBuses is the public catalogue.
func (s BusService) ListActiveBuses(ctx context.Context) ([]models.Bus, error) {
	list, err := s.Buses.ListActive(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list buses", Err: err}
	}
	return list, nil
}

// ListOwnerBuses is an owner's fleet in every approval state, so rejection notes stay visible.
func (s BusService) ListOwnerBuses(ctx context.Context, ownerID string) ([]models.Bus, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ValidationError{Field: "ownerId", Msg: "is required"}
	}
	list, err := s.Buses.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list owner buses", Err: err}
	}
	return list, nil
}

func validateBus(in models.BusInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.ValidationError{Field: "title", Msg: "is required"}
	}
	if strings.TrimSpace(in.RegistrationNo) == "" {
		return domain.ValidationError{Field: "registrationNo", Msg: "is required"}
	}
	if in.Capacity <= 0 {
		return domain.ValidationError{Field: "capacity", Msg: "must be at least 1"}
	}
	return nil
}

func cleanAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = utils.NormalizeSpace(a); a != "" && !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func busWriteErr(err error) error {
	if db.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: "bus", Msg: "registration number already listed", Err: err}
	}
	return writeErr("bus", err)
}

// CreateBus lists a new bus for review. It starts PENDING and inactive.
func (s BusService) CreateBus(ctx context.Context, ownerID string, in models.BusInput) (models.Bus, error) {
	if err := validateBus(in); err != nil {
		return models.Bus{}, err
	}
	if _, err := s.Users.GetOwnerProfile(ctx, ownerID); err != nil {
		return models.Bus{}, lookupErr("owner", err)
	}

	now := s.Now.now()
	var desc *string
	if in.Description != nil {
		desc = utils.NilIfBlank(*in.Description)
	}
	bus := models.Bus{
		ID:             s.NewID.next(),
		OwnerID:        ownerID,
		Title:          utils.NormalizeSpace(in.Title),
		RegistrationNo: strings.ToUpper(strings.TrimSpace(in.RegistrationNo)),
		Capacity:       in.Capacity,
		Description:    desc,
		Amenities:      cleanAmenities(in.Amenities),
		ApprovalStatus: models.ApprovalPending,
		Active:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Buses.Create(ctx, bus); err != nil {
		return models.Bus{}, busWriteErr(err)
	}

	utils.LogEvent(s.RequestID, "bus", "create", fmt.Sprintf("bus_id=%s owner_id=%s", bus.ID, ownerID))
	n := s.notify()
	n.send(ctx, realtime.Admins, realtime.EventBusCreated, bus)
	n.send(ctx, realtime.Owner(ownerID), realtime.EventBusCreated, bus)
	return bus, nil
}

func sameText(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

// UpdateBus applies an owner edit. Changing what customers see sends the bus
// back to review.
func (s BusService) UpdateBus(ctx context.Context, ownerID, busID string, patch models.BusPatch) (models.Bus, error) {
	bus, err := s.load(ctx, busID)
	if err != nil {
		return models.Bus{}, err
	}
	if bus.OwnerID != ownerID {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	wasBookable := bus.Bookable()
	demote := false

	if patch.Title != nil {
		title := utils.NormalizeSpace(*patch.Title)
		if title == "" {
			return models.Bus{}, domain.ValidationError{Field: "title", Msg: "must not be blank"}
		}
		demote = demote || title != bus.Title
		bus.Title = title
	}
	if patch.RegistrationNo != nil {
		reg := strings.ToUpper(strings.TrimSpace(*patch.RegistrationNo))
		if reg == "" {
			return models.Bus{}, domain.ValidationError{Field: "registrationNo", Msg: "must not be blank"}
		}
		bus.RegistrationNo = reg
	}
	if patch.Capacity != nil {
		if *patch.Capacity <= 0 {
			return models.Bus{}, domain.ValidationError{Field: "capacity", Msg: "must be at least 1"}
		}
		demote = demote || *patch.Capacity != bus.Capacity
		bus.Capacity = *patch.Capacity
	}
	if patch.Description != nil {
		desc := utils.NilIfBlank(*patch.Description)
		demote = demote || !sameText(desc, bus.Description)
		bus.Description = desc
	}
	if patch.Amenities != nil {
		amenities := cleanAmenities(*patch.Amenities)
		demote = demote || !slices.Equal(amenities, bus.Amenities)
		bus.Amenities = amenities
	}
	if patch.Active != nil {
		bus.Active = *patch.Active
	}
	if demote {
		bus.ApprovalStatus = models.ApprovalPending
		bus.Active = false
	}
	bus.UpdatedAt = s.Now.now()

	if err := s.Buses.Update(ctx, bus); err != nil {
		return models.Bus{}, busWriteErr(err)
	}

	utils.LogEvent(s.RequestID, "bus", "update", fmt.Sprintf("bus_id=%s demoted=%t", bus.ID, demote))
	n := s.notify()
	n.send(ctx, realtime.Admins, realtime.EventBusUpdated, bus)
	n.send(ctx, realtime.Owner(ownerID), realtime.EventBusUpdated, bus)
	if wasBookable && !bus.Bookable() {
		n.send(ctx, realtime.Users, realtime.EventBusRemoved, removedBus{ID: bus.ID})
	}
	return bus, nil
}

// ApproveOwner marks an owner profile as verified.
func (s BusService) ApproveOwner(ctx context.Context, adminID, ownerID string) (models.OwnerProfile, error) {
	if strings.TrimSpace(ownerID) == "" {
		return models.OwnerProfile{}, domain.ValidationError{Field: "ownerId", Msg: "is required"}
	}
	now := s.Now.now()
	if err := s.Users.SetOwnerVerified(ctx, ownerID, true, now); err != nil {
		return models.OwnerProfile{}, writeErr("owner", err)
	}
	profile, err := s.Users.GetOwnerProfile(ctx, ownerID)
	if err != nil {
		return models.OwnerProfile{}, lookupErr("owner", err)
	}
	auditErr := s.auditor().record(ctx, adminID, models.AuditOwnerApproved, models.EntityOwnerProfile, profile.ID,
		map[string]bool{"verifiedByAdmin": true})

	utils.LogEvent(s.RequestID, "owner", "approve", fmt.Sprintf("owner_id=%s", profile.ID))
	s.notify().send(ctx, realtime.Owner(profile.ID), realtime.EventOwnerApproved, profile)
	return profile, auditErr
}
