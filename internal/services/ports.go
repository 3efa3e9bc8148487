package services

import (
	"context"
	"time"

	"connection-travels/internal/domain/models"
)

// Stores are implemented by the MySQL repositories and by in-memory fakes in tests.
// Missing rows come back as sql.ErrNoRows.

type BookingStore interface {
	Create(ctx context.Context, b models.Booking) error
	GetByID(ctx context.Context, id string) (models.Booking, error)
	GetForUser(ctx context.Context, userID, id string) (models.Booking, error)
	GetForOwner(ctx context.Context, ownerID, id string) (models.Booking, error)
	Update(ctx context.Context, b models.Booking) error
	ListQuoteRequests(ctx context.Context) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
}

type BusStore interface {
	GetByID(ctx context.Context, id string) (models.Bus, error)
	ListByApproval(ctx context.Context, status models.ApprovalStatus) ([]models.Bus, error)
	ListActive(ctx context.Context) ([]models.Bus, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Bus, error)
	Create(ctx context.Context, bus models.Bus) error
	Update(ctx context.Context, bus models.Bus) error
	SetApproval(ctx context.Context, id string, status models.ApprovalStatus, active bool, note *string, at time.Time) error
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, u models.User) error
	CreateOwner(ctx context.Context, u models.User, p models.OwnerProfile) error
	GetOwnerProfile(ctx context.Context, id string) (models.OwnerProfile, error)
	GetOwnerProfileByUser(ctx context.Context, userID string) (models.OwnerProfile, error)
	SetOwnerVerified(ctx context.Context, id string, verified bool, at time.Time) error
}

type AuditStore interface {
	Append(ctx context.Context, e models.AuditEntry) error
	List(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error)
}
