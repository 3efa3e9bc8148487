package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"connection-travels/internal/domain/models"
	"connection-travels/internal/realtime"

	"github.com/go-sql-driver/mysql"
)

type memBookings struct {
	mu      sync.Mutex
	rows    map[string]models.Booking
	creates int
	updates int
	failErr error
}

func newMemBookings(rows ...models.Booking) *memBookings {
	m := &memBookings{rows: map[string]models.Booking{}}
	for _, b := range rows {
		m.rows[b.ID] = b
	}
	return m
}

func (m *memBookings) Create(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.creates++
	b.Bus = nil
	m.rows[b.ID] = b
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *memBookings) GetForUser(ctx context.Context, userID, id string) (models.Booking, error) {
	b, err := m.GetByID(ctx, id)
	if err != nil || b.UserID != userID {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *memBookings) GetForOwner(ctx context.Context, ownerID, id string) (models.Booking, error) {
	b, err := m.GetByID(ctx, id)
	if err != nil || b.OwnerID != ownerID {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *memBookings) Update(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if _, ok := m.rows[b.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updates++
	m.rows[b.ID] = b
	return nil
}

func (m *memBookings) filter(keep func(models.Booking) bool) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.rows {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBookings) ListQuoteRequests(context.Context) ([]models.Booking, error) {
	return m.filter(func(b models.Booking) bool { return b.Status.IsOpenQuote() }), nil
}

func (m *memBookings) ListByOwner(_ context.Context, ownerID string) ([]models.Booking, error) {
	return m.filter(func(b models.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (m *memBookings) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return m.filter(func(b models.Booking) bool { return b.UserID == userID }), nil
}

type memBuses struct {
	mu   sync.Mutex
	rows map[string]models.Bus
	dup  bool
}

func newMemBuses(rows ...models.Bus) *memBuses {
	m := &memBuses{rows: map[string]models.Bus{}}
	for _, b := range rows {
		m.rows[b.ID] = b
	}
	return m
}

func (m *memBuses) GetByID(_ context.Context, id string) (models.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return models.Bus{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *memBuses) ListByApproval(_ context.Context, status models.ApprovalStatus) ([]models.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Bus{}
	for _, b := range m.rows {
		if b.ApprovalStatus == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBuses) ListActive(_ context.Context) ([]models.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Bus{}
	for _, b := range m.rows {
		if b.Bookable() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBuses) ListByOwner(_ context.Context, ownerID string) ([]models.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Bus{}
	for _, b := range m.rows {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memBuses) Create(_ context.Context, bus models.Bus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dup {
		return errDuplicate
	}
	m.rows[bus.ID] = bus
	return nil
}

func (m *memBuses) Update(_ context.Context, bus models.Bus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[bus.ID]; !ok {
		return sql.ErrNoRows
	}
	m.rows[bus.ID] = bus
	return nil
}

func (m *memBuses) SetApproval(_ context.Context, id string, status models.ApprovalStatus, active bool, note *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.ApprovalStatus, b.Active, b.ApprovalNote, b.UpdatedAt = status, active, note, at
	m.rows[id] = b
	return nil
}

type memUsers struct {
	mu       sync.Mutex
	users    map[string]models.User
	profiles map[string]models.OwnerProfile
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]models.User{}, profiles: map[string]models.OwnerProfile{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) insert(u models.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errDuplicate
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) Create(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(u)
}

func (m *memUsers) CreateOwner(_ context.Context, u models.User, p models.OwnerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.insert(u); err != nil {
		return err
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *memUsers) GetOwnerProfile(_ context.Context, id string) (models.OwnerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return models.OwnerProfile{}, sql.ErrNoRows
	}
	return p, nil
}

func (m *memUsers) GetOwnerProfileByUser(_ context.Context, userID string) (models.OwnerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return models.OwnerProfile{}, sql.ErrNoRows
}

func (m *memUsers) SetOwnerVerified(_ context.Context, id string, verified bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.VerifiedByAdmin, p.UpdatedAt = verified, at
	m.profiles[id] = p
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	failErr error
}

func (m *memAudit) Append(_ context.Context, e models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudit) List(_ context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AuditEntry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if (f.Entity == "" || e.Entity == f.Entity) && (f.EntityID == "" || e.EntityID == f.EntityID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type published struct {
	Audience realtime.Audience
	Event    string
	Payload  any
}

// recordingPublisher captures fan-out calls in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, audience realtime.Audience, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Audience: audience, Event: event, Payload: payload})
	return p.err
}

func (p *recordingPublisher) sent(event string, audience realtime.Audience) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.Event == event && e.Audience == audience {
			return e.Payload, true
		}
	}
	return nil, false
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

var errDuplicate = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

// stepClock advances by one second per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func seqIDs(prefix string) IDSource {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var errBoom = errors.New("boom")
