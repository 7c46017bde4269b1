package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/bankcore/internal/domain"
)

// LoanRepository implements domain.LoanStore using PostgreSQL. A row exists
// exactly while the request is pending: submission inserts it, approval
// deletes it in the same transaction as the credit.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// Create persists a newly submitted loan request.
func (r *LoanRepository) Create(ctx context.Context, request *domain.LoanRequest) error {
	query := `
		INSERT INTO loan_requests (id, user_id, amount, priority_score, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		request.ID,
		request.UserID,
		request.Amount,
		request.PriorityScore,
		request.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan request: %w", err)
	}
	return nil
}

// Delete removes a loan request.
func (r *LoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM loan_requests WHERE id = $1`

	result, err := queryTarget(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("loan request %s not found", id)
	}
	return nil
}

// ListPending returns all requests still awaiting approval, in submission order.
func (r *LoanRepository) ListPending(ctx context.Context) ([]domain.LoanRequest, error) {
	query := `
		SELECT id, user_id, amount, priority_score, submitted_at
		FROM loan_requests
		ORDER BY submitted_at, id
	`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.LoanRequest
	for rows.Next() {
		var req domain.LoanRequest
		err := rows.Scan(&req.ID, &req.UserID, &req.Amount, &req.PriorityScore, &req.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list loan requests: %w", err)
	}
	return requests, nil
}
