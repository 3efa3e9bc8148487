package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "connection-travels/internal/config"
	intdb "connection-travels/internal/db"
	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, created_at, updated_at`

func scanUser(s rowScanner) (models.User, error) {
	var (
		u     models.User
		phone sql.NullString
		role  string
	)
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, err
	}
	u.Phone = intdb.StringPtr(phone)
	u.Role = domain.Role(role)
	return u, nil
}

const ownerProfileColumns = `id, user_id, company_name, gst_number, address, verified_by_admin, created_at, updated_at`

func scanOwnerProfile(s rowScanner) (models.OwnerProfile, error) {
	var (
		p            models.OwnerProfile
		gst, address sql.NullString
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.CompanyName, &gst, &address, &p.VerifiedByAdmin, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.OwnerProfile{}, err
	}
	p.GSTNumber = intdb.StringPtr(gst)
	p.Address = intdb.StringPtr(address)
	return p, nil
}

// GetByEmail expects an already-normalized address.
func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
}

func (r UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	return insertUser(ctx, r.db(), u)
}

func insertUser(ctx context.Context, exec intdb.Execer, u models.User) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, intdb.NullString(u.Phone), string(u.Role),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return err
}

// CreateOwner inserts the user and its owner profile in one transaction.
func (r UserRepository) CreateOwner(ctx context.Context, u models.User, p models.OwnerProfile) (err error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin owner registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertUser(ctx, tx, u); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO owner_profiles (id, user_id, company_name, gst_number, address, verified_by_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.CompanyName, intdb.NullString(p.GSTNumber), intdb.NullString(p.Address), p.VerifiedByAdmin,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r UserRepository) GetOwnerProfile(ctx context.Context, id string) (models.OwnerProfile, error) {
	return scanOwnerProfile(r.db().QueryRowContext(ctx, `SELECT `+ownerProfileColumns+` FROM owner_profiles WHERE id = ? LIMIT 1`, id))
}

func (r UserRepository) GetOwnerProfileByUser(ctx context.Context, userID string) (models.OwnerProfile, error) {
	return scanOwnerProfile(r.db().QueryRowContext(ctx, `SELECT `+ownerProfileColumns+` FROM owner_profiles WHERE user_id = ? LIMIT 1`, userID))
}

func (r UserRepository) SetOwnerVerified(ctx context.Context, id string, verified bool, at time.Time) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE owner_profiles SET verified_by_admin = ?, updated_at = ? WHERE id = ?`,
		verified, at.UTC(), id)
	return affectedOrNoRows(res, err)
}
