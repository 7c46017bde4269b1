package db

import (
	"context"
	"fmt"
)

// migrations is the full schema, applied in order. Statements are idempotent
// so Migrate can run at every startup.
var migrations = []string{
	`CREATE SEQUENCE IF NOT EXISTS account_numbers START WITH 10000;`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		account_number TEXT NOT NULL UNIQUE,
		balance NUMERIC(15, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,

	`CREATE TABLE IF NOT EXISTS transfers (
		id UUID PRIMARY KEY,
		sender_id BIGINT NOT NULL REFERENCES accounts(id),
		receiver_id BIGINT NOT NULL REFERENCES accounts(id),
		amount NUMERIC(15, 2) NOT NULL CHECK (amount > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_transfers_sender_id ON transfers(sender_id);
	CREATE INDEX IF NOT EXISTS idx_transfers_receiver_id ON transfers(receiver_id);`,

	`CREATE TABLE IF NOT EXISTS loan_requests (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES accounts(id),
		amount NUMERIC(15, 2) NOT NULL CHECK (amount > 0),
		priority_score BIGINT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_loan_requests_user_id ON loan_requests(user_id);`,
}

// Migrate applies the schema to the connected database.
func (p *Pool) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
