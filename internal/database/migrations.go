package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// column types that differ between PostgreSQL and SQLite
type dialect struct {
	id        string
	timestamp string
}

func dialectFor(driver string) dialect {
	if driver == "postgres" {
		return dialect{id: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ"}
	}
	return dialect{id: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "DATETIME"}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{id}},
		username VARCHAR(80) NOT NULL UNIQUE,
		password_hash VARCHAR(256) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'Admin',
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id {{id}},
		name VARCHAR(100) NOT NULL,
		email VARCHAR(120),
		phone VARCHAR(20),
		address TEXT,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id {{id}},
		name VARCHAR(100) NOT NULL,
		email VARCHAR(120),
		phone VARCHAR(20),
		address TEXT,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		tax_number VARCHAR(50),
		discount_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		excise_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id {{id}},
		sn VARCHAR(50) NOT NULL UNIQUE,
		product VARCHAR(100) NOT NULL,
		category VARCHAR(50) NOT NULL DEFAULT '',
		brand VARCHAR(50) NOT NULL DEFAULT '',
		cp NUMERIC(12,2) NOT NULL,
		wholesale NUMERIC(12,2) NOT NULL,
		sp NUMERIC(12,2) NOT NULL,
		uom VARCHAR(20) NOT NULL,
		opening_quantity NUMERIC(12,2) NOT NULL DEFAULT 0,
		current_quantity NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id {{id}},
		invoice_number VARCHAR(50) NOT NULL UNIQUE,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		total_amount NUMERIC(14,2) NOT NULL,
		discount NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		final_amount NUMERIC(14,2) NOT NULL,
		sale_date {{ts}} NOT NULL,
		notes TEXT,
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id {{id}},
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		item_id BIGINT NOT NULL REFERENCES items(id),
		quantity NUMERIC(12,2) NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		total_price NUMERIC(14,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id {{id}},
		invoice_number VARCHAR(50) NOT NULL UNIQUE,
		vendor_id BIGINT REFERENCES vendors(id) ON DELETE SET NULL,
		total_amount NUMERIC(14,2) NOT NULL,
		discount NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		final_amount NUMERIC(14,2) NOT NULL,
		purchase_date {{ts}} NOT NULL,
		notes TEXT,
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_items (
		id {{id}},
		purchase_id BIGINT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
		item_id BIGINT NOT NULL REFERENCES items(id),
		quantity NUMERIC(12,2) NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		total_price NUMERIC(14,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id {{id}},
		item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		movement_type VARCHAR(30) NOT NULL,
		quantity_changed NUMERIC(12,2) NOT NULL,
		reference VARCHAR(80),
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		movement_date {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase_id ON purchase_items(purchase_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_item_id ON stock_movements(item_id)`,
}

// Migrate creates every table the ledger needs. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	d := dialectFor(db.DriverName())
	replacer := strings.NewReplacer("{{id}}", d.id, "{{ts}}", d.timestamp)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, replacer.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
