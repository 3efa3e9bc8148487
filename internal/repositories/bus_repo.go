package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	intconfig "connection-travels/internal/config"
	intdb "connection-travels/internal/db"
	"connection-travels/internal/domain/models"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, owner_id, title, registration_no, capacity, description, amenities,
	approval_status, approval_note, active, created_at, updated_at`

const joinedBusColumns = `b.id, b.owner_id, b.title, b.registration_no, b.capacity, b.description, b.amenities,
	b.approval_status, b.approval_note, b.active, b.created_at, b.updated_at`

func scanBus(s rowScanner) (models.Bus, error) {
	var (
		bus               models.Bus
		description, note sql.NullString
		amenities         []byte
		approval          string
	)
	if err := s.Scan(&bus.ID, &bus.OwnerID, &bus.Title, &bus.RegistrationNo, &bus.Capacity,
		&description, &amenities, &approval, &note, &bus.Active, &bus.CreatedAt, &bus.UpdatedAt); err != nil {
		return models.Bus{}, err
	}
	bus.Description = intdb.StringPtr(description)
	bus.ApprovalNote = intdb.StringPtr(note)
	bus.ApprovalStatus = models.ApprovalStatus(approval)
	bus.Amenities = []string{}
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &bus.Amenities); err != nil {
			return models.Bus{}, fmt.Errorf("decode amenities for bus %s: %w", bus.ID, err)
		}
	}
	bus.CreatedAt = bus.CreatedAt.UTC()
	bus.UpdatedAt = bus.UpdatedAt.UTC()
	return bus, nil
}

func encodeAmenities(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode amenities: %w", err)
	}
	return string(raw), nil
}

// GetByID returns sql.ErrNoRows when the bus does not exist.
func (r BusRepository) GetByID(ctx context.Context, id string) (models.Bus, error) {
	return scanBus(r.db().QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id = ? LIMIT 1`, id))
}

func (r BusRepository) ListByApproval(ctx context.Context, status models.ApprovalStatus) ([]models.Bus, error) {
	return r.list(ctx, `WHERE approval_status = ? ORDER BY created_at ASC`, string(status))
}

// ListByOwner returns an owner's whole fleet, newest first, whatever its approval state.
func (r BusRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Bus, error) {
	return r.list(ctx, `WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

// ListActive returns the public catalogue. Buses of owners not yet verified stay hidden.
func (r BusRepository) ListActive(ctx context.Context) ([]models.Bus, error) {
	return r.query(ctx, `
		SELECT `+joinedBusColumns+`
		FROM buses b
		JOIN owner_profiles op ON op.id = b.owner_id
		WHERE b.approval_status = ? AND b.active = 1 AND op.verified_by_admin = 1
		ORDER BY b.title ASC`, string(models.ApprovalApproved))
}

func (r BusRepository) list(ctx context.Context, clause string, args ...any) ([]models.Bus, error) {
	return r.query(ctx, `SELECT `+busColumns+` FROM buses `+clause, args...)
}

func (r BusRepository) query(ctx context.Context, query string, args ...any) ([]models.Bus, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		bus, err := scanBus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bus)
	}
	return out, rows.Err()
}

func (r BusRepository) Create(ctx context.Context, bus models.Bus) error {
	amenities, err := encodeAmenities(bus.Amenities)
	if err != nil {
		return err
	}
	_, err = r.db().ExecContext(ctx, `
		INSERT INTO buses (
			id, owner_id, title, registration_no, capacity, description, amenities,
			approval_status, approval_note, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bus.ID, bus.OwnerID, bus.Title, bus.RegistrationNo, bus.Capacity,
		intdb.NullString(bus.Description), amenities,
		string(bus.ApprovalStatus), intdb.NullString(bus.ApprovalNote), bus.Active,
		bus.CreatedAt.UTC(), bus.UpdatedAt.UTC(),
	)
	return err
}

// Update rewrites the listing and its approval columns together.
func (r BusRepository) Update(ctx context.Context, bus models.Bus) error {
	amenities, err := encodeAmenities(bus.Amenities)
	if err != nil {
		return err
	}
	res, err := r.db().ExecContext(ctx, `
		UPDATE buses SET
			title = ?, registration_no = ?, capacity = ?, description = ?, amenities = ?,
			approval_status = ?, approval_note = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		bus.Title, bus.RegistrationNo, bus.Capacity, intdb.NullString(bus.Description), amenities,
		string(bus.ApprovalStatus), intdb.NullString(bus.ApprovalNote), bus.Active, bus.UpdatedAt.UTC(),
		bus.ID,
	)
	return affectedOrNoRows(res, err)
}

func (r BusRepository) SetApproval(ctx context.Context, id string, status models.ApprovalStatus, active bool, note *string, at time.Time) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE buses SET approval_status = ?, active = ?, approval_note = ?, updated_at = ?
		WHERE id = ?`,
		string(status), active, intdb.NullString(note), at.UTC(), id,
	)
	return affectedOrNoRows(res, err)
}

// affectedOrNoRows turns a zero-row UPDATE into sql.ErrNoRows.
// The DSN sets clientFoundRows, so matched-but-unchanged rows still count.
func affectedOrNoRows(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
