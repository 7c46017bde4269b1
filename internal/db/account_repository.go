package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/bankcore/internal/domain"
)

// querier is the subset of pgx operations the repositories need; both
// *pgxpool.Pool and pgx.Tx satisfy it. queryTarget picks the context
// transaction when one is open, the pool otherwise.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func queryTarget(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := getTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// AccountRepository implements domain.AccountStore using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, name, account_number, balance, created_at, updated_at`

// GetByID retrieves an account by its unique identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(queryTarget(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Lock retrieves an account and holds a row lock on it for the duration of
// the surrounding transaction, via SELECT ... FOR UPDATE. Must be called
// within a transaction context.
func (r *AccountRepository) Lock(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(queryTarget(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return account, nil
}

// UpdateBalance persists a new balance and updated-at timestamp.
func (r *AccountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE accounts SET balance = $2, updated_at = $3 WHERE id = $1`

	result, err := queryTarget(ctx, r.pool).Exec(ctx, query, id, balance, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Create inserts a new account. The id comes from the table's identity
// column and the account number from a dedicated sequence, so concurrent
// creations can't collide (no read-max-then-increment).
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (name, account_number, balance, created_at, updated_at)
		VALUES ($1, nextval('account_numbers')::text, $2, $3, $4)
		RETURNING id, account_number
	`

	err := queryTarget(ctx, r.pool).QueryRow(ctx, query,
		account.Name,
		account.Balance,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.AccountNumber)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// List returns all accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// CountTransfersFor returns how many committed transfers the account has
// participated in, as sender or receiver.
func (r *AccountRepository) CountTransfersFor(ctx context.Context, id int64) (int64, error) {
	query := `SELECT COUNT(*) FROM transfers WHERE sender_id = $1 OR receiver_id = $1`

	var count int64
	if err := queryTarget(ctx, r.pool).QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

// scanAccount scans one account row in accountColumns order.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.AccountNumber,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
