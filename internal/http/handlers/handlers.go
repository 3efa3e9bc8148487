package handlers

import (
	"context"

	"connection-travels/internal/auth"
	"connection-travels/internal/realtime"
	"connection-travels/internal/services"

	"github.com/gorilla/websocket"
)

// Handlers holds the services behind the REST surface. Each request takes a
// copy tagged with its request id.
type Handlers struct {
	Bookings services.BookingService
	Buses    services.BusService
	Auth     services.AuthService
	Audit    services.AuditService
	Docs     services.DocsService

	Hub      *realtime.Hub
	Upgrader *websocket.Upgrader
	Tokens   auth.Issuer

	// PingDB backs /health; nil reports the database as unchecked.
	PingDB func(ctx context.Context) error
}
