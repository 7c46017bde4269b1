package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStore defines data access for account records.
// Implementations must honor the transaction carried in the context by
// TransactionManager so multi-account mutations commit or roll back as one.
type AccountStore interface {
	// GetByID retrieves an account by id. Returns ErrAccountNotFound if missing.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// Lock retrieves an account and holds a store-level write lock on it for
	// the duration of the surrounding transaction. Must be called within a
	// transaction context. Returns ErrAccountNotFound if missing.
	Lock(ctx context.Context, id int64) (*Account, error)

	// UpdateBalance persists a new balance and updated-at timestamp.
	// Returns ErrAccountNotFound if the account no longer exists.
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, updatedAt time.Time) error

	// Create inserts a new account, assigning its ID and account number from
	// store-owned sequences.
	Create(ctx context.Context, account *Account) error

	// List returns all accounts. Used to refresh the directory cache.
	List(ctx context.Context) ([]Account, error)

	// CountTransfersFor returns how many committed transfers the account has
	// participated in, as sender or receiver.
	CountTransfersFor(ctx context.Context, id int64) (int64, error)
}

// TransferStore defines data access for the append-only transfer log.
type TransferStore interface {
	// Create appends a transfer record.
	Create(ctx context.Context, transfer *Transfer) error

	// ListAll returns every committed transfer in insertion order.
	// Used to rebuild the transaction index at startup.
	ListAll(ctx context.Context) ([]Transfer, error)
}

// LoanStore defines data access for durable pending loan requests.
type LoanStore interface {
	// Create persists a newly submitted request.
	Create(ctx context.Context, request *LoanRequest) error

	// Delete removes a request, typically in the same transaction as the
	// approval credit.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListPending returns all requests still awaiting approval.
	// Used to rebuild the scheduler heap at startup.
	ListPending(ctx context.Context) ([]LoanRequest, error)
}

// TransactionManager executes a function within a store transaction.
// If the function returns an error, the transaction is rolled back;
// otherwise it is committed.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems (e.g. RabbitMQ).
// Publishing is best-effort: failures never undo a committed operation.
type EventPublisher interface {
	PublishTransferCompleted(ctx context.Context, transfer *Transfer) error
	PublishLoanApproved(ctx context.Context, request *LoanRequest) error
}
