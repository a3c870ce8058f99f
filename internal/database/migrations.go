package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS schools (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			short_code TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id BIGSERIAL PRIMARY KEY,
			school_id BIGINT NOT NULL REFERENCES schools(id),
			session_id BIGINT,
			term_id BIGINT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			expense_type TEXT NOT NULL,
			amount DECIMAL(14, 2) NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL DEFAULT 'NGN',
			month TEXT NOT NULL,
			expense_date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending_approval',
			notes TEXT NOT NULL DEFAULT '',
			attachments TEXT[] NOT NULL DEFAULT '{}',
			created_by BIGINT NOT NULL,
			updated_by BIGINT,
			approved_by BIGINT,
			approved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_school_id ON expenses(school_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_status ON expenses(status)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_month ON expenses(month)`,

		`CREATE TABLE IF NOT EXISTS expense_payments (
			id BIGSERIAL PRIMARY KEY,
			expense_id BIGINT NOT NULL REFERENCES expenses(id),
			school_id BIGINT NOT NULL REFERENCES schools(id),
			payee_type TEXT NOT NULL,
			payee_id BIGINT,
			payee_name TEXT NOT NULL DEFAULT '',
			payment_date TIMESTAMPTZ NOT NULL,
			amount_paid DECIMAL(14, 2) NOT NULL CHECK (amount_paid > 0),
			currency TEXT NOT NULL DEFAULT 'NGN',
			payment_method TEXT NOT NULL,
			transaction_ref TEXT NOT NULL UNIQUE,
			period_covered TEXT NOT NULL DEFAULT '',
			receipt_url TEXT NOT NULL,
			receipt_public_id TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			breakdown_allowances DECIMAL(14, 2) NOT NULL DEFAULT 0,
			breakdown_deductions DECIMAL(14, 2) NOT NULL DEFAULT 0,
			recorded_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expense_payments_expense_id ON expense_payments(expense_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expense_payments_school_id ON expense_payments(school_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expense_payments_payment_date ON expense_payments(payment_date)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// SeedSchools inserts a demo school for local development.
func SeedSchools(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO schools (name, short_code)
		VALUES ('Demo Secondary School', 'DEMO')
		ON CONFLICT (short_code) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed schools: %w", err)
	}
	return nil
}
