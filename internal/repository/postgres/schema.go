package postgres

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the payments table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS payments (
			invoice_number  TEXT PRIMARY KEY,
			kind            TEXT NOT NULL,
			total_price     DOUBLE PRECISION NOT NULL,
			method_selector TEXT NOT NULL,
			status          TEXT NOT NULL,
			owner_email     TEXT NOT NULL,
			booking         JSONB,
			account         JSONB,
			promo           JSONB
		);
		CREATE INDEX IF NOT EXISTS payments_owner_status_idx
			ON payments (owner_email, status);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}
