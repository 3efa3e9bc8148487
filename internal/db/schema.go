package db

import (
	"context"
	"fmt"

	"connection-travels/internal/utils"
)

type tableDDL struct {
	name string
	ddl  string
}

// Order matters: foreign keys point backwards.
var schema = []tableDDL{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id            CHAR(36)     NOT NULL PRIMARY KEY,
			email         VARCHAR(191) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			first_name    VARCHAR(100) NOT NULL,
			last_name     VARCHAR(100) NOT NULL DEFAULT '',
			phone         VARCHAR(32)  NULL,
			role          VARCHAR(16)  NOT NULL,
			created_at    DATETIME(3)  NOT NULL,
			updated_at    DATETIME(3)  NOT NULL,
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"owner_profiles", `
		CREATE TABLE IF NOT EXISTS owner_profiles (
			id                CHAR(36)     NOT NULL PRIMARY KEY,
			user_id           CHAR(36)     NOT NULL,
			company_name      VARCHAR(191) NOT NULL,
			gst_number        VARCHAR(32)  NULL,
			address           TEXT         NULL,
			verified_by_admin TINYINT(1)   NOT NULL DEFAULT 0,
			created_at        DATETIME(3)  NOT NULL,
			updated_at        DATETIME(3)  NOT NULL,
			UNIQUE KEY uq_owner_profiles_user (user_id),
			CONSTRAINT fk_owner_profiles_user FOREIGN KEY (user_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"buses", `
		CREATE TABLE IF NOT EXISTS buses (
			id              CHAR(36)     NOT NULL PRIMARY KEY,
			owner_id        CHAR(36)     NOT NULL,
			title           VARCHAR(191) NOT NULL,
			registration_no VARCHAR(32)  NOT NULL,
			capacity        INT          NOT NULL,
			description     TEXT         NULL,
			amenities       JSON         NULL,
			approval_status VARCHAR(16)  NOT NULL DEFAULT 'PENDING',
			approval_note   TEXT         NULL,
			active          TINYINT(1)   NOT NULL DEFAULT 0,
			created_at      DATETIME(3)  NOT NULL,
			updated_at      DATETIME(3)  NOT NULL,
			UNIQUE KEY uq_buses_registration (registration_no),
			KEY idx_buses_approval (approval_status, active),
			CONSTRAINT fk_buses_owner FOREIGN KEY (owner_id) REFERENCES owner_profiles (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"bookings", `
		CREATE TABLE IF NOT EXISTS bookings (
			id                     CHAR(36)      NOT NULL PRIMARY KEY,
			user_id                CHAR(36)      NOT NULL,
			bus_id                 CHAR(36)      NOT NULL,
			owner_id               CHAR(36)      NOT NULL,
			status                 VARCHAR(32)   NOT NULL,
			travel_details         JSON          NOT NULL,
			package_selections     JSON          NULL,
			user_notes             TEXT          NULL,
			admin_notes            TEXT          NULL,
			owner_payout_price     DECIMAL(12,2) NULL,
			owner_payout_locked_at DATETIME(3)   NULL,
			user_final_price       DECIMAL(12,2) NULL,
			user_price_locked_at   DATETIME(3)   NULL,
			owner_confirmation_at  DATETIME(3)   NULL,
			user_confirmation_at   DATETIME(3)   NULL,
			created_at             DATETIME(3)   NOT NULL,
			updated_at             DATETIME(3)   NOT NULL,
			KEY idx_bookings_status_created (status, created_at),
			KEY idx_bookings_owner (owner_id, created_at),
			KEY idx_bookings_user (user_id, created_at),
			CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
			CONSTRAINT fk_bookings_bus FOREIGN KEY (bus_id) REFERENCES buses (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"audit_logs", `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id         CHAR(36)    NOT NULL PRIMARY KEY,
			actor_id   CHAR(36)    NOT NULL,
			action     VARCHAR(64) NOT NULL,
			entity     VARCHAR(32) NOT NULL,
			entity_id  CHAR(36)    NOT NULL,
			payload    JSON        NULL,
			created_at DATETIME(3) NOT NULL,
			KEY idx_audit_entity (entity, entity_id, created_at),
			KEY idx_audit_created (created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// TableNames lists managed tables in creation order.
func TableNames() []string {
	out := make([]string, 0, len(schema))
	for _, t := range schema {
		out = append(out, t.name)
	}
	return out
}

type schemaDB interface {
	QueryRower
	Execer
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db schemaDB) error {
	for _, t := range schema {
		if HasTable(ctx, db, t.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		utils.LogEvent("", "schema", "create_table", "created "+t.name)
	}
	return nil
}
