package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	intconfig "connection-travels/internal/config"
	intdb "connection-travels/internal/db"
	"connection-travels/internal/domain/models"
)

// BookingRepository reads and writes the bookings table. Writes are single-row statements.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `
	b.id, b.user_id, b.bus_id, b.owner_id, b.status,
	b.travel_details, b.package_selections, b.user_notes, b.admin_notes,
	b.owner_payout_price, b.owner_payout_locked_at,
	b.user_final_price, b.user_price_locked_at,
	b.owner_confirmation_at, b.user_confirmation_at,
	b.created_at, b.updated_at`

const bookingSummaryColumns = `,
	bs.title, bs.registration_no, bs.capacity,
	COALESCE(op.company_name, ''),
	u.first_name, u.last_name, u.email`

const bookingJoins = `
	FROM bookings b
	JOIN buses bs ON bs.id = b.bus_id
	JOIN users u ON u.id = b.user_id
	LEFT JOIN owner_profiles op ON op.id = b.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner, withSummaries bool) (models.Booking, error) {
	var (
		b                              models.Booking
		status                         string
		travel, packages               []byte
		userNotes, adminNotes          sql.NullString
		payout, finalPrice             sql.NullFloat64
		payoutLocked, priceLocked      sql.NullTime
		ownerConfirmed, userConfirmed  sql.NullTime
		busTitle, busReg, company      string
		busCapacity                    int
		custFirst, custLast, custEmail string
	)
	dest := []any{
		&b.ID, &b.UserID, &b.BusID, &b.OwnerID, &status,
		&travel, &packages, &userNotes, &adminNotes,
		&payout, &payoutLocked,
		&finalPrice, &priceLocked,
		&ownerConfirmed, &userConfirmed,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if withSummaries {
		dest = append(dest, &busTitle, &busReg, &busCapacity, &company, &custFirst, &custLast, &custEmail)
	}
	if err := s.Scan(dest...); err != nil {
		return models.Booking{}, err
	}

	b.Status = models.BookingStatus(status)
	if !b.Status.IsValid() {
		return models.Booking{}, fmt.Errorf("booking %s has unknown status %q", b.ID, status)
	}
	if len(travel) > 0 {
		if err := json.Unmarshal(travel, &b.TravelDetails); err != nil {
			return models.Booking{}, fmt.Errorf("decode travel_details for booking %s: %w", b.ID, err)
		}
	}
	if len(packages) > 0 {
		b.PackageSelections = json.RawMessage(packages)
	}
	b.UserNotes = intdb.StringPtr(userNotes)
	b.AdminNotes = intdb.StringPtr(adminNotes)
	b.OwnerPayoutPrice = intdb.FloatPtr(payout)
	b.OwnerPayoutLockedAt = intdb.TimePtr(payoutLocked)
	b.UserFinalPrice = intdb.FloatPtr(finalPrice)
	b.UserPriceLockedAt = intdb.TimePtr(priceLocked)
	b.OwnerConfirmationAt = intdb.TimePtr(ownerConfirmed)
	b.UserConfirmationAt = intdb.TimePtr(userConfirmed)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()

	if withSummaries {
		b.Bus = &models.BusSummary{ID: b.BusID, Title: busTitle, RegistrationNo: busReg, Capacity: busCapacity}
		b.Owner = &models.OwnerSummary{ID: b.OwnerID, CompanyName: company}
		b.Customer = &models.CustomerSummary{ID: b.UserID, FirstName: custFirst, LastName: custLast, Email: custEmail}
	}
	return b, nil
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) error {
	travel, err := json.Marshal(b.TravelDetails)
	if err != nil {
		return fmt.Errorf("encode travel_details: %w", err)
	}
	var packages any
	if len(b.PackageSelections) > 0 {
		packages = string(b.PackageSelections)
	}
	_, err = r.db().ExecContext(ctx, `
		INSERT INTO bookings (
			id, user_id, bus_id, owner_id, status,
			travel_details, package_selections, user_notes, admin_notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.BusID, b.OwnerID, string(b.Status),
		string(travel), packages, intdb.NullString(b.UserNotes), intdb.NullString(b.AdminNotes),
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	return err
}

// GetByID returns sql.ErrNoRows when the booking does not exist.
func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ? LIMIT 1`, id)
	return scanBooking(row, false)
}

// GetForUser scopes by customer; a foreign booking looks missing.
func (r BookingRepository) GetForUser(ctx context.Context, userID, id string) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx,
		`SELECT `+bookingColumns+bookingSummaryColumns+bookingJoins+` WHERE b.id = ? AND b.user_id = ? LIMIT 1`,
		id, userID)
	return scanBooking(row, true)
}

func (r BookingRepository) GetForOwner(ctx context.Context, ownerID, id string) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx,
		`SELECT `+bookingColumns+bookingSummaryColumns+bookingJoins+` WHERE b.id = ? AND b.owner_id = ? LIMIT 1`,
		id, ownerID)
	return scanBooking(row, true)
}

// Update writes every negotiable column of b in one statement.
func (r BookingRepository) Update(ctx context.Context, b models.Booking) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings SET
			status = ?,
			admin_notes = ?,
			owner_payout_price = ?,
			owner_payout_locked_at = ?,
			user_final_price = ?,
			user_price_locked_at = ?,
			owner_confirmation_at = ?,
			user_confirmation_at = ?,
			updated_at = ?
		WHERE id = ?`,
		string(b.Status),
		intdb.NullString(b.AdminNotes),
		intdb.NullFloat(b.OwnerPayoutPrice),
		intdb.NullTime(b.OwnerPayoutLockedAt),
		intdb.NullFloat(b.UserFinalPrice),
		intdb.NullTime(b.UserPriceLockedAt),
		intdb.NullTime(b.OwnerConfirmationAt),
		intdb.NullTime(b.UserConfirmationAt),
		b.UpdatedAt.UTC(),
		b.ID,
	)
	return affectedOrNoRows(res, err)
}

// ListQuoteRequests returns open quotes newest first.
func (r BookingRepository) ListQuoteRequests(ctx context.Context) ([]models.Booking, error) {
	statuses := models.OpenQuoteStatuses()
	args := make([]any, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, string(s))
	}
	where := ` WHERE b.status IN (?` + strings.Repeat(`, ?`, len(statuses)-1) + `)`
	return r.list(ctx, where, args...)
}

func (r BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	return r.list(ctx, ` WHERE b.owner_id = ?`, ownerID)
}

func (r BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.list(ctx, ` WHERE b.user_id = ?`, userID)
}

func (r BookingRepository) list(ctx context.Context, where string, args ...any) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+bookingColumns+bookingSummaryColumns+bookingJoins+where+` ORDER BY b.created_at DESC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
