package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "connection-travels/internal/config"
	"connection-travels/internal/domain/models"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// AuditRepository is insert-only; there is no update or delete path.
type AuditRepository struct {
	DB *sql.DB
}

func (r AuditRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AuditRepository) Append(ctx context.Context, e models.AuditEntry) error {
	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, entity, entity_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, e.Action, e.Entity, e.EntityID, payload, e.CreatedAt.UTC(),
	)
	return err
}

// List returns newest first; Limit is clamped to [1, 500] with 100 as default.
func (r AuditRepository) List(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	var (
		conds []string
		args  []any
	)
	if f.Entity != "" {
		conds = append(conds, "entity = ?")
		args = append(args, f.Entity)
	}
	if f.EntityID != "" {
		conds = append(conds, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	query := `SELECT id, actor_id, action, entity, entity_id, payload, created_at FROM audit_logs`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			e.Payload = payload
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
