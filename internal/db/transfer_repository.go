package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/bankcore/internal/domain"
)

// TransferRepository implements domain.TransferStore using PostgreSQL.
// The transfers table is append-only; rows are never updated or deleted.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

// Create appends a transfer record.
func (r *TransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (id, sender_id, receiver_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		transfer.ID,
		transfer.SenderID,
		transfer.ReceiverID,
		transfer.Amount,
		transfer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// ListAll returns every committed transfer in insertion order.
func (r *TransferRepository) ListAll(ctx context.Context) ([]domain.Transfer, error) {
	query := `
		SELECT id, sender_id, receiver_id, amount, created_at
		FROM transfers
		ORDER BY created_at, id
	`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var t domain.Transfer
		err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
