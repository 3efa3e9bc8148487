package services

import (
	"context"
	"strings"

	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
)

// AuditService is the read side of the audit log. Rows are written by the
// mutating services.
type AuditService struct {
	Audit AuditStore
}

var auditEntities = map[string]bool{
	models.EntityBooking:      true,
	models.EntityBus:          true,
	models.EntityOwnerProfile: true,
}

func (s AuditService) ListAuditLog(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	f.Entity = strings.TrimSpace(f.Entity)
	f.EntityID = strings.TrimSpace(f.EntityID)
	if f.Entity != "" && !auditEntities[f.Entity] {
		return nil, domain.ValidationError{Field: "entity", Msg: "unknown entity " + f.Entity}
	}
	if f.Limit < 0 {
		return nil, domain.ValidationError{Field: "limit", Msg: "must not be negative"}
	}
	list, err := s.Audit.List(ctx, f)
	if err != nil {
		return nil, domain.InternalError{Msg: "list audit log", Err: err}
	}
	return list, nil
}
