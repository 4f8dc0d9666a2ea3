package sql

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the schema. Statements are idempotent and shared
// between SQLite and PostgreSQL except for the primary key syntax.
func Migrate(db *sqlx.DB, driver string) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS clients (
            id {{pk}},
            name TEXT NOT NULL,
            email TEXT,
            phone TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS treatment_methods (
            id {{pk}},
            name TEXT NOT NULL,
            billing_type TEXT NOT NULL CHECK (billing_type IN ('hourly', 'session')),
            rate TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS invoices (
            id {{pk}},
            client_id BIGINT NOT NULL REFERENCES clients(id),
            invoice_number TEXT NOT NULL CONSTRAINT invoices_invoice_number_key UNIQUE,
            invoice_date TEXT NOT NULL,
            due_date TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'paid', 'void')),
            total_amount TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS treatments (
            id {{pk}},
            client_id BIGINT NOT NULL REFERENCES clients(id),
            treatment_method_id BIGINT NOT NULL REFERENCES treatment_methods(id),
            treatment_date TEXT NOT NULL,
            duration_hours TEXT,
            notes TEXT NOT NULL DEFAULT '',
            is_billed BOOLEAN NOT NULL DEFAULT FALSE,
            invoice_id BIGINT REFERENCES invoices(id),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS invoice_lines (
            id {{pk}},
            invoice_id BIGINT NOT NULL REFERENCES invoices(id),
            treatment_id BIGINT NOT NULL REFERENCES treatments(id),
            description TEXT NOT NULL DEFAULT '',
            amount TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS invoice_sequences (
            year INTEGER PRIMARY KEY,
            last_value INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_treatments_unbilled
            ON treatments (client_id, treatment_date) WHERE is_billed = FALSE;`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices (client_id);`,
	}

	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{pk}}", pk)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
