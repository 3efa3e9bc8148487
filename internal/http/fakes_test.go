package api

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"connection-travels/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

// In-memory stores for route tests. Lists ignore ordering unless they sort.

type bookingStore struct {
	mu   sync.Mutex
	rows map[string]models.Booking
}

func (s *bookingStore) Create(_ context.Context, b models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.ID] = b
	return nil
}

func (s *bookingStore) GetByID(_ context.Context, id string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (s *bookingStore) GetForUser(ctx context.Context, userID, id string) (models.Booking, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil || b.UserID != userID {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (s *bookingStore) GetForOwner(ctx context.Context, ownerID, id string) (models.Booking, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil || b.OwnerID != ownerID {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (s *bookingStore) Update(_ context.Context, b models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[b.ID]; !ok {
		return sql.ErrNoRows
	}
	s.rows[b.ID] = b
	return nil
}

func (s *bookingStore) list(keep func(models.Booking) bool) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.rows {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *bookingStore) ListQuoteRequests(context.Context) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.Status.IsOpenQuote() })
}

func (s *bookingStore) ListByOwner(_ context.Context, ownerID string) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.OwnerID == ownerID })
}

func (s *bookingStore) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.UserID == userID })
}

type busStore struct {
	mu     sync.Mutex
	rows   map[string]models.Bus
	owners *userStore
}

func (s *busStore) GetByID(_ context.Context, id string) (models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return models.Bus{}, sql.ErrNoRows
	}
	return b, nil
}

func (s *busStore) filter(keep func(models.Bus) bool) []models.Bus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Bus{}
	for _, b := range s.rows {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (s *busStore) ListByApproval(_ context.Context, status models.ApprovalStatus) ([]models.Bus, error) {
	return s.filter(func(b models.Bus) bool { return b.ApprovalStatus == status }), nil
}

func (s *busStore) ListActive(context.Context) ([]models.Bus, error) {
	return s.filter(func(b models.Bus) bool { return b.Bookable() && s.owners.verified(b.OwnerID) }), nil
}

func (s *busStore) ListByOwner(_ context.Context, ownerID string) ([]models.Bus, error) {
	list := s.filter(func(b models.Bus) bool { return b.OwnerID == ownerID })
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *busStore) Create(_ context.Context, b models.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.ID] = b
	return nil
}

func (s *busStore) Update(_ context.Context, b models.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.ID] = b
	return nil
}

func (s *busStore) SetApproval(_ context.Context, id string, status models.ApprovalStatus, active bool, note *string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.ApprovalStatus, b.Active, b.ApprovalNote, b.UpdatedAt = status, active, note, at
	s.rows[id] = b
	return nil
}

type userStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	profiles map[string]models.OwnerProfile
}

func (s *userStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (s *userStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *userStore) Create(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *userStore) CreateOwner(ctx context.Context, u models.User, p models.OwnerProfile) error {
	if err := s.Create(ctx, u); err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles[p.ID] = p
	s.mu.Unlock()
	return nil
}

func (s *userStore) GetOwnerProfile(_ context.Context, id string) (models.OwnerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.OwnerProfile{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *userStore) GetOwnerProfileByUser(_ context.Context, userID string) (models.OwnerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return models.OwnerProfile{}, sql.ErrNoRows
}

func (s *userStore) verified(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[ownerID].VerifiedByAdmin
}

func (s *userStore) SetOwnerVerified(_ context.Context, id string, verified bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.VerifiedByAdmin, p.UpdatedAt = verified, at
	s.profiles[id] = p
	return nil
}

type auditStore struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (s *auditStore) Append(_ context.Context, e models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *auditStore) List(context.Context, models.AuditFilter) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.entries...), nil
}
