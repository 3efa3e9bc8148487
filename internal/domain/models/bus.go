package models

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

type Bus struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"ownerId"`
	Title          string         `json:"title"`
	RegistrationNo string         `json:"registrationNo"`
	Capacity       int            `json:"capacity"`
	Description    *string        `json:"description"`
	Amenities      []string       `json:"amenities"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	ApprovalNote   *string        `json:"approvalNote"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Bookable gates quote requests.
func (b Bus) Bookable() bool {
	return b.Active && b.ApprovalStatus == ApprovalApproved
}

func (b Bus) Summary() BusSummary {
	return BusSummary{ID: b.ID, Title: b.Title, RegistrationNo: b.RegistrationNo, Capacity: b.Capacity}
}

type BusInput struct {
	Title          string   `json:"title" binding:"required,notblank"`
	RegistrationNo string   `json:"registrationNo" binding:"required,notblank"`
	Capacity       int      `json:"capacity" binding:"required,gt=0"`
	Description    *string  `json:"description"`
	Amenities      []string `json:"amenities"`
}

// BusPatch uses key presence like NegotiationPatch.
type BusPatch struct {
	Title          *string   `json:"title,omitempty"`
	RegistrationNo *string   `json:"registrationNo,omitempty"`
	Capacity       *int      `json:"capacity,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Amenities      *[]string `json:"amenities,omitempty"`
	Active         *bool     `json:"active,omitempty"`
}

type BusSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	RegistrationNo string `json:"registrationNo"`
	Capacity       int    `json:"capacity"`
}
