package models

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	StatusQuoteRequested  BookingStatus = "QUOTE_REQUESTED"
	StatusAdminReviewing  BookingStatus = "ADMIN_REVIEWING"
	StatusPriceFinalized  BookingStatus = "PRICE_FINALIZED"
	StatusAwaitingPayment BookingStatus = "AWAITING_PAYMENT"
	StatusConfirmed       BookingStatus = "CONFIRMED"
	StatusCancelled       BookingStatus = "CANCELLED"
	StatusCompleted       BookingStatus = "COMPLETED"
)

func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether s is any known status, side states included.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusQuoteRequested, StatusAdminReviewing, StatusPriceFinalized, StatusAwaitingPayment,
		StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsNegotiable is the set an admin may write through a negotiation patch.
// CANCELLED and COMPLETED have their own operations.
func (s BookingStatus) IsNegotiable() bool {
	switch s {
	case StatusQuoteRequested, StatusAdminReviewing, StatusPriceFinalized, StatusAwaitingPayment, StatusConfirmed:
		return true
	default:
		return false
	}
}

// IsOpenQuote reports whether the booking still shows up in the admin quote queue.
func (s BookingStatus) IsOpenQuote() bool {
	switch s {
	case StatusQuoteRequested, StatusAdminReviewing, StatusPriceFinalized, StatusAwaitingPayment:
		return true
	default:
		return false
	}
}

// IsTerminal reports the side states nothing leaves.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// OpenQuoteStatuses lists IsOpenQuote statuses in flow order.
func OpenQuoteStatuses() []BookingStatus {
	return []BookingStatus{
		StatusQuoteRequested,
		StatusAdminReviewing,
		StatusPriceFinalized,
		StatusAwaitingPayment,
	}
}

// TravelDetails is stored as a JSON column.
type TravelDetails struct {
	PickupLocation      string   `json:"pickupLocation" binding:"required,notblank"`
	DropLocations       []string `json:"dropLocations,omitempty"`
	StartDate           string   `json:"startDate" binding:"required"`
	EndDate             string   `json:"endDate,omitempty"`
	NumberOfDays        int      `json:"numberOfDays,omitempty"`
	Passengers          int      `json:"passengers" binding:"required,gt=0"`
	BudgetRange         string   `json:"budgetRange,omitempty"`
	EventType           string   `json:"eventType,omitempty"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
}

type Booking struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	BusID   string `json:"busId"`
	OwnerID string `json:"ownerId"`

	Status            BookingStatus   `json:"status"`
	TravelDetails     TravelDetails   `json:"travelDetails"`
	PackageSelections json.RawMessage `json:"packageSelections,omitempty"`
	UserNotes         *string         `json:"userNotes"`
	AdminNotes        *string         `json:"adminNotes"`

	OwnerPayoutPrice    *float64   `json:"ownerPayoutPrice"`
	OwnerPayoutLockedAt *time.Time `json:"ownerPayoutLockedAt"`
	UserFinalPrice      *float64   `json:"userFinalPrice"`
	UserPriceLockedAt   *time.Time `json:"userPriceLockedAt"`
	OwnerConfirmationAt *time.Time `json:"ownerConfirmationAt"`
	UserConfirmationAt  *time.Time `json:"userConfirmationAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Filled by list queries only.
	Bus      *BusSummary      `json:"bus,omitempty"`
	Owner    *OwnerSummary    `json:"owner,omitempty"`
	Customer *CustomerSummary `json:"customer,omitempty"`
}

// PayoutLocked reports whether the owner payout is frozen for negotiation edits.
func (b Booking) PayoutLocked() bool {
	return b.OwnerPayoutLockedAt != nil
}

func (b Booking) PriceLocked() bool {
	return b.UserPriceLockedAt != nil
}

// NegotiationPatch uses key presence: nil means "not sent".
type NegotiationPatch struct {
	Status           *BookingStatus `json:"status,omitempty"`
	UserFinalPrice   *float64       `json:"userFinalPrice,omitempty"`
	OwnerPayoutPrice *float64       `json:"ownerPayoutPrice,omitempty"`
	AdminNotes       *string        `json:"adminNotes,omitempty"`
	AppendAdminNote  *string        `json:"appendAdminNote,omitempty"`
}

// QuoteInput is what a customer submits to open a quote.
type QuoteInput struct {
	BusID             string          `json:"busId" binding:"required"`
	TravelDetails     TravelDetails   `json:"travelDetails"`
	PackageSelections json.RawMessage `json:"packageSelections,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// OwnerBookingView hides customer notes, admin notes and the customer price.
type OwnerBookingView struct {
	ID                  string           `json:"id"`
	BusID               string           `json:"busId"`
	OwnerID             string           `json:"ownerId"`
	Status              BookingStatus    `json:"status"`
	TravelDetails       TravelDetails    `json:"travelDetails"`
	PackageSelections   json.RawMessage  `json:"packageSelections,omitempty"`
	OwnerPayoutPrice    *float64         `json:"ownerPayoutPrice"`
	OwnerPayoutLockedAt *time.Time       `json:"ownerPayoutLockedAt"`
	OwnerConfirmationAt *time.Time       `json:"ownerConfirmationAt"`
	UserConfirmationAt  *time.Time       `json:"userConfirmationAt"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
	Bus                 *BusSummary      `json:"bus,omitempty"`
	Customer            *CustomerSummary `json:"customer,omitempty"`
}

// CustomerBookingView hides admin notes and everything about the owner payout.
type CustomerBookingView struct {
	ID                  string          `json:"id"`
	BusID               string          `json:"busId"`
	Status              BookingStatus   `json:"status"`
	TravelDetails       TravelDetails   `json:"travelDetails"`
	PackageSelections   json.RawMessage `json:"packageSelections,omitempty"`
	UserNotes           *string         `json:"userNotes"`
	UserFinalPrice      *float64        `json:"userFinalPrice"`
	UserPriceLockedAt   *time.Time      `json:"userPriceLockedAt"`
	OwnerConfirmationAt *time.Time      `json:"ownerConfirmationAt"`
	UserConfirmationAt  *time.Time      `json:"userConfirmationAt"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Bus                 *BusSummary     `json:"bus,omitempty"`
}

func (b Booking) ForOwner() OwnerBookingView {
	return OwnerBookingView{
		ID:                  b.ID,
		BusID:               b.BusID,
		OwnerID:             b.OwnerID,
		Status:              b.Status,
		TravelDetails:       b.TravelDetails,
		PackageSelections:   b.PackageSelections,
		OwnerPayoutPrice:    b.OwnerPayoutPrice,
		OwnerPayoutLockedAt: b.OwnerPayoutLockedAt,
		OwnerConfirmationAt: b.OwnerConfirmationAt,
		UserConfirmationAt:  b.UserConfirmationAt,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
		Bus:                 b.Bus,
		Customer:            b.Customer,
	}
}

func (b Booking) ForCustomer() CustomerBookingView {
	return CustomerBookingView{
		ID:                  b.ID,
		BusID:               b.BusID,
		Status:              b.Status,
		TravelDetails:       b.TravelDetails,
		PackageSelections:   b.PackageSelections,
		UserNotes:           b.UserNotes,
		UserFinalPrice:      b.UserFinalPrice,
		UserPriceLockedAt:   b.UserPriceLockedAt,
		OwnerConfirmationAt: b.OwnerConfirmationAt,
		UserConfirmationAt:  b.UserConfirmationAt,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
		Bus:                 b.Bus,
	}
}
