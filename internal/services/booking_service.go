package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
	"connection-travels/internal/realtime"
	"connection-travels/internal/utils"
)

// BookingService is the negotiation engine. Every mutation is one row write
// followed by an audit row (admin actions) and the fan-out.
type BookingService struct {
	Bookings  BookingStore
	Buses     BusStore
	Audit     AuditStore
	Publisher realtime.Publisher
	Now       Clock
	NewID     IDSource
	RequestID string
}

// WithRequestID returns a copy that tags logs with id.
func (s BookingService) WithRequestID(id string) BookingService {
	s.RequestID = id
	return s
}

func (s BookingService) notify() notifier {
	return notifier{pub: s.Publisher, requestID: s.RequestID}
}

func (s BookingService) auditor() auditor {
	return auditor{store: s.Audit, now: s.Now, ids: s.NewID}
}

func validateTravel(td models.TravelDetails) error {
	if strings.TrimSpace(td.PickupLocation) == "" {
		return domain.ValidationError{Field: "travelDetails.pickupLocation", Msg: "is required"}
	}
	if strings.TrimSpace(td.StartDate) == "" {
		return domain.ValidationError{Field: "travelDetails.startDate", Msg: "is required"}
	}
	start, err := utils.ParseTravelDate(td.StartDate)
	if err != nil {
		return domain.ValidationError{Field: "travelDetails.startDate", Msg: "must be YYYY-MM-DD", Err: err}
	}
	if strings.TrimSpace(td.EndDate) != "" {
		end, err := utils.ParseTravelDate(td.EndDate)
		if err != nil {
			return domain.ValidationError{Field: "travelDetails.endDate", Msg: "must be YYYY-MM-DD", Err: err}
		}
		if end.Before(start) {
			return domain.ValidationError{Field: "travelDetails.endDate", Msg: "is before startDate"}
		}
	}
	if td.Passengers <= 0 {
		return domain.ValidationError{Field: "travelDetails.passengers", Msg: "must be at least 1"}
	}
	if td.NumberOfDays < 0 {
		return domain.ValidationError{Field: "travelDetails.numberOfDays", Msg: "must not be negative"}
	}
	return nil
}

// normalizePackages accepts a JSON list or nothing.
func normalizePackages(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, domain.ValidationError{Field: "packageSelections", Msg: "must be a list", Err: err}
	}
	return trimmed, nil
}

func validatePrice(field string, p *float64) error {
	if p == nil {
		return nil
	}
	if *p < 0 {
		return domain.ValidationError{Field: field, Msg: "must not be negative"}
	}
	return nil
}

func (s BookingService) load(ctx context.Context, id string) (models.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return models.Booking{}, domain.ValidationError{Field: "bookingId", Msg: "is required"}
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, lookupErr("booking", err)
	}
	return b, nil
}

func (s BookingService) save(ctx context.Context, b models.Booking) error {
	if err := s.Bookings.Update(ctx, b); err != nil {
		return writeErr("booking", err)
	}
	return nil
}

// RequestQuote opens a QUOTE_REQUESTED booking against a bookable bus.
func (s BookingService) RequestQuote(ctx context.Context, customerID string, in models.QuoteInput) (models.Booking, error) {
	if err := validateTravel(in.TravelDetails); err != nil {
		return models.Booking{}, err
	}
	packages, err := normalizePackages(in.PackageSelections)
	if err != nil {
		return models.Booking{}, err
	}
	busID := strings.TrimSpace(in.BusID)
	if busID == "" {
		return models.Booking{}, domain.ValidationError{Field: "busId", Msg: "is required"}
	}

	bus, err := s.Buses.GetByID(ctx, busID)
	if err != nil {
		return models.Booking{}, lookupErr("bus", err)
	}
	if !bus.Bookable() {
		return models.Booking{}, domain.NotFoundError{Resource: "bus"}
	}

	now := s.Now.now()
	td := in.TravelDetails
	td.PickupLocation = utils.NormalizeSpace(td.PickupLocation)
	td.StartDate = strings.TrimSpace(td.StartDate)
	td.EndDate = strings.TrimSpace(td.EndDate)

	b := models.Booking{
		ID:                s.NewID.next(),
		UserID:            customerID,
		BusID:             bus.ID,
		OwnerID:           bus.OwnerID,
		Status:            models.StatusQuoteRequested,
		TravelDetails:     td,
		PackageSelections: packages,
		UserNotes:         utils.NilIfBlank(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return models.Booking{}, domain.InternalError{Msg: "create booking", Err: err}
	}
	summary := bus.Summary()
	b.Bus = &summary

	utils.LogEvent(s.RequestID, "booking", "request_quote", fmt.Sprintf("booking_id=%s bus_id=%s", b.ID, b.BusID))
	s.notify().booking(ctx, b, realtime.EventQuoteRequested, realtime.Admins, realtime.Owner(b.OwnerID))
	return b, nil
}

// AdminUpdateNegotiation applies a key-presence patch. The owner payout is
// frozen once locked; status and customer price are frozen once the customer price is locked.
func (s BookingService) AdminUpdateNegotiation(ctx context.Context, adminID, bookingID string, patch models.NegotiationPatch) (models.Booking, error) {
	if patch.Status != nil && !patch.Status.IsNegotiable() {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unsupported status %q", string(*patch.Status))}
	}
	if err := validatePrice("userFinalPrice", patch.UserFinalPrice); err != nil {
		return models.Booking{}, err
	}
	if err := validatePrice("ownerPayoutPrice", patch.OwnerPayoutPrice); err != nil {
		return models.Booking{}, err
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status.IsTerminal() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is " + string(b.Status)}
	}

	if !b.PriceLocked() {
		if patch.Status != nil {
			b.Status = *patch.Status
		}
		if patch.UserFinalPrice != nil {
			price := utils.RoundMoney(*patch.UserFinalPrice)
			b.UserFinalPrice = &price
		}
	}
	if patch.OwnerPayoutPrice != nil && !b.PayoutLocked() {
		price := utils.RoundMoney(*patch.OwnerPayoutPrice)
		b.OwnerPayoutPrice = &price
	}
	switch {
	case patch.AppendAdminNote != nil:
		if note := strings.TrimSpace(*patch.AppendAdminNote); note != "" {
			merged := utils.AppendLine(b.AdminNotes, note)
			b.AdminNotes = &merged
		}
	case patch.AdminNotes != nil:
		b.AdminNotes = utils.NilIfBlank(*patch.AdminNotes)
	}
	b.UpdatedAt = s.Now.now()

	if err := s.save(ctx, b); err != nil {
		return models.Booking{}, err
	}
	auditErr := s.auditor().record(ctx, adminID, models.AuditBookingNegotiationUpdate, models.EntityBooking, b.ID, patch)

	utils.LogEvent(s.RequestID, "booking", "negotiate", fmt.Sprintf("booking_id=%s status=%s", b.ID, b.Status))
	s.notify().booking(ctx, b, realtime.EventNegotiationUpdated, realtime.Admins, realtime.Users, realtime.Owner(b.OwnerID))
	return b, auditErr
}

// LockOwnerPayout sets and freezes the owner payout. Re-locking overwrites and re-stamps.
func (s BookingService) LockOwnerPayout(ctx context.Context, adminID, bookingID string, price *float64) (models.Booking, error) {
	if price == nil {
		return models.Booking{}, domain.ValidationError{Field: "ownerPayoutPrice", Msg: "is required"}
	}
	if err := validatePrice("ownerPayoutPrice", price); err != nil {
		return models.Booking{}, err
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status.IsTerminal() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is " + string(b.Status)}
	}

	now := s.Now.now()
	p := utils.RoundMoney(*price)
	b.OwnerPayoutPrice = &p
	b.OwnerPayoutLockedAt = &now
	if b.Status == models.StatusPriceFinalized {
		b.Status = models.StatusAwaitingPayment
	}
	b.UpdatedAt = now

	if err := s.save(ctx, b); err != nil {
		return models.Booking{}, err
	}
	auditErr := s.auditor().record(ctx, adminID, models.AuditBookingOwnerPayoutLocked, models.EntityBooking, b.ID,
		map[string]float64{"ownerPayoutPrice": p})

	utils.LogEvent(s.RequestID, "booking", "lock_owner_payout", fmt.Sprintf("booking_id=%s status=%s", b.ID, b.Status))
	s.notify().booking(ctx, b, realtime.EventOwnerPayoutLocked, realtime.Admins, realtime.Owner(b.OwnerID))
	return b, auditErr
}

// LockUserPrice sets the customer price, stamps the lock and confirms, all in one write.
func (s BookingService) LockUserPrice(ctx context.Context, adminID, bookingID string, price *float64) (models.Booking, error) {
	if price == nil {
		return models.Booking{}, domain.ValidationError{Field: "userFinalPrice", Msg: "is required"}
	}
	if err := validatePrice("userFinalPrice", price); err != nil {
		return models.Booking{}, err
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status.IsTerminal() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is " + string(b.Status)}
	}

	now := s.Now.now()
	p := utils.RoundMoney(*price)
	b.UserFinalPrice = &p
	b.UserPriceLockedAt = &now
	b.Status = models.StatusConfirmed
	b.UpdatedAt = now

	if err := s.save(ctx, b); err != nil {
		return models.Booking{}, err
	}
	auditErr := s.auditor().record(ctx, adminID, models.AuditBookingUserPriceLocked, models.EntityBooking, b.ID,
		map[string]float64{"userFinalPrice": p})

	utils.LogEvent(s.RequestID, "booking", "lock_user_price", fmt.Sprintf("booking_id=%s", b.ID))
	n := s.notify()
	n.booking(ctx, b, realtime.EventUserPriceLocked, realtime.Admins, realtime.Users, realtime.Owner(b.OwnerID))
	n.booking(ctx, b, realtime.EventBookingConfirmed, realtime.Users, realtime.Owner(b.OwnerID))
	return b, auditErr
}

// CancelBooking moves any non-terminal booking to CANCELLED.
func (s BookingService) CancelBooking(ctx context.Context, adminID, bookingID, reason string) (models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status.IsTerminal() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is already " + string(b.Status)}
	}
	reason = strings.TrimSpace(reason)
	if reason != "" {
		merged := utils.AppendLine(b.AdminNotes, "Cancelled: "+reason)
		b.AdminNotes = &merged
	}
	b.Status = models.StatusCancelled
	b.UpdatedAt = s.Now.now()

	if err := s.save(ctx, b); err != nil {
		return models.Booking{}, err
	}
	auditErr := s.auditor().record(ctx, adminID, models.AuditBookingCancelled, models.EntityBooking, b.ID,
		map[string]string{"reason": reason})

	utils.LogEvent(s.RequestID, "booking", "cancel", fmt.Sprintf("booking_id=%s", b.ID))
	s.notify().booking(ctx, b, realtime.EventBookingCancelled, realtime.Admins, realtime.Users, realtime.Owner(b.OwnerID))
	return b, auditErr
}

// CompleteBooking closes a CONFIRMED trip.
func (s BookingService) CompleteBooking(ctx context.Context, adminID, bookingID string) (models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status != models.StatusConfirmed {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "only CONFIRMED bookings can be completed"}
	}
	b.Status = models.StatusCompleted
	b.UpdatedAt = s.Now.now()

	if err := s.save(ctx, b); err != nil {
		return models.Booking{}, err
	}
	auditErr := s.auditor().record(ctx, adminID, models.AuditBookingCompleted, models.EntityBooking, b.ID, struct{}{})

	utils.LogEvent(s.RequestID, "booking", "complete", fmt.Sprintf("booking_id=%s", b.ID))
	s.notify().booking(ctx, b, realtime.EventBookingCompleted, realtime.Admins, realtime.Users, realtime.Owner(b.OwnerID))
	return b, auditErr
}

func checkSignOff(b models.Booking) error {
	if b.Status.IsTerminal() {
		return domain.ConflictError{Resource: "booking", Msg: "booking is " + string(b.Status)}
	}
	if !b.PriceLocked() {
		return domain.ConflictError{Resource: "booking", Msg: "price is not locked yet"}
	}
	return nil
}

// ConfirmByOwner stamps the owner sign-off once; repeats return the booking unchanged.
func (s BookingService) ConfirmByOwner(ctx context.Context, ownerID, bookingID string) (models.OwnerBookingView, error) {
	b, err := s.Bookings.GetForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return models.OwnerBookingView{}, lookupErr("booking", err)
	}
	if err := checkSignOff(b); err != nil {
		return models.OwnerBookingView{}, err
	}
	if b.OwnerConfirmationAt != nil {
		return b.ForOwner(), nil
	}
	now := s.Now.now()
	b.OwnerConfirmationAt = &now
	b.UpdatedAt = now
	if err := s.save(ctx, b); err != nil {
		return models.OwnerBookingView{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "owner_confirm", fmt.Sprintf("booking_id=%s owner_id=%s", b.ID, ownerID))
	s.notify().booking(ctx, b, realtime.EventBookingOwnerConfirm, realtime.Admins, realtime.Users)
	return b.ForOwner(), nil
}

// ConfirmByUser stamps the customer sign-off once.
func (s BookingService) ConfirmByUser(ctx context.Context, userID, bookingID string) (models.CustomerBookingView, error) {
	b, err := s.Bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return models.CustomerBookingView{}, lookupErr("booking", err)
	}
	if err := checkSignOff(b); err != nil {
		return models.CustomerBookingView{}, err
	}
	if b.UserConfirmationAt != nil {
		return b.ForCustomer(), nil
	}
	now := s.Now.now()
	b.UserConfirmationAt = &now
	b.UpdatedAt = now
	if err := s.save(ctx, b); err != nil {
		return models.CustomerBookingView{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "user_confirm", fmt.Sprintf("booking_id=%s", b.ID))
	s.notify().booking(ctx, b, realtime.EventBookingUserConfirm, realtime.Admins, realtime.Owner(b.OwnerID))
	return b.ForCustomer(), nil
}

// ListQuoteRequests is the admin queue, newest first.
func (s BookingService) ListQuoteRequests(ctx context.Context) ([]models.Booking, error) {
	list, err := s.Bookings.ListQuoteRequests(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list quote requests", Err: err}
	}
	return list, nil
}

func (s BookingService) ListBookingsForOwner(ctx context.Context, ownerID string) ([]models.OwnerBookingView, error) {
	list, err := s.Bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list owner bookings", Err: err}
	}
	out := make([]models.OwnerBookingView, 0, len(list))
	for _, b := range list {
		out = append(out, b.ForOwner())
	}
	return out, nil
}

func (s BookingService) ListBookingsForUser(ctx context.Context, userID string) ([]models.CustomerBookingView, error) {
	list, err := s.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list user bookings", Err: err}
	}
	out := make([]models.CustomerBookingView, 0, len(list))
	for _, b := range list {
		out = append(out, b.ForCustomer())
	}
	return out, nil
}

// GetBookingForUser hides foreign bookings behind not-found.
func (s BookingService) GetBookingForUser(ctx context.Context, userID, bookingID string) (models.CustomerBookingView, error) {
	b, err := s.Bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return models.CustomerBookingView{}, lookupErr("booking", err)
	}
	return b.ForCustomer(), nil
}
