package database

import (
	"context"
	"testing"

	"invoicing_backend/internal/config"
)

func TestConnectAndMigrate_SQLiteInMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, config.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second Migrate should be idempotent: %v", err)
	}

	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('items','sales','sale_items','purchases','purchase_items','stock_movements')`); err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 ledger tables, got %d", n)
	}
}

func TestDialectFor(t *testing.T) {
	if got := dialectFor("postgres").id; got != "BIGSERIAL PRIMARY KEY" {
		t.Fatalf("postgres id column = %q", got)
	}
	if got := dialectFor("sqlite").timestamp; got != "DATETIME" {
		t.Fatalf("sqlite timestamp column = %q", got)
	}
}
