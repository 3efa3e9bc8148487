package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestEnsureSchemaCreatesOnlyMissingTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	for _, name := range TableNames() {
		rows := sqlmock.NewRows([]string{"table_name"})
		if name == "users" {
			rows.AddRow("users")
		}
		mock.ExpectQuery("information_schema\\.tables").WithArgs(name).WillReturnRows(rows)
		if name != "users" {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + name).WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaStopsOnDDLError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("denied"))

	if err := EnsureSchema(context.Background(), db); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Fatalf("1062 should be a duplicate key")
	}
	if IsDuplicateKey(&mysql.MySQLError{Number: 1452}) {
		t.Fatalf("1452 is a foreign key error")
	}
	if IsDuplicateKey(errors.New("plain")) {
		t.Fatalf("plain errors are not duplicates")
	}
}
