package domain

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/bankcore/internal/metrics"
)

// Ledger owns all balance mutations and their atomicity guarantees.
// Every mutation runs inside a store transaction with row locks, so the
// balance >= 0 invariant holds under concurrent callers: two withdrawals
// can never both pass the balance check before either applies its debit.
type Ledger struct {
	accounts  AccountStore
	transfers TransferStore
	txManager TransactionManager
	index     *TransactionIndex
	directory *Directory
	// Optional event publisher; pass nil if no events should be emitted.
	events EventPublisher
}

// NewLedger creates a Ledger. Pass nil for events to disable publishing.
func NewLedger(
	accounts AccountStore,
	transfers TransferStore,
	txManager TransactionManager,
	index *TransactionIndex,
	directory *Directory,
	events EventPublisher,
) *Ledger {
	return &Ledger{
		accounts:  accounts,
		transfers: transfers,
		txManager: txManager,
		index:     index,
		directory: directory,
		events:    events,
	}
}

// Deposit atomically increases the account balance by amount.
// Deposits are not transfers: no transfer record is appended.
func (l *Ledger) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return l.credit(txCtx, accountID, amount)
	})
	if err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("deposit").Inc()
		return err
	}

	metrics.DepositsTotal.Inc()
	return nil
}

// Withdraw atomically decreases the account balance by amount.
// Fails with ErrInsufficientBalance if the balance can't cover it; a failed
// withdrawal leaves the account untouched.
func (l *Ledger) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := l.accounts.Lock(txCtx, accountID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		return l.accounts.UpdateBalance(txCtx, account.ID, account.Balance.Sub(amount), time.Now())
	})
	if err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("withdraw").Inc()
		return err
	}

	metrics.WithdrawalsTotal.Inc()
	return nil
}

// Transfer atomically moves amount from sender to receiver: debit, credit,
// and the transfer record commit as one unit, so partial application (debit
// without credit) is never observable. On success the new edge is recorded
// in the transaction index, the directory cache is refreshed, and a
// transfer-completed event is published best-effort.
func (l *Ledger) Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) error {
	if senderID == receiverID {
		return ErrInvalidParticipants
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	record := NewTransfer(senderID, receiverID, amount)

	err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		sender, receiver, err := l.lockPair(txCtx, senderID, receiverID)
		if err != nil {
			return err
		}

		if sender.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		now := time.Now()
		if err := l.accounts.UpdateBalance(txCtx, sender.ID, sender.Balance.Sub(amount), now); err != nil {
			return err
		}
		if err := l.accounts.UpdateBalance(txCtx, receiver.ID, receiver.Balance.Add(amount), now); err != nil {
			return err
		}

		return l.transfers.Create(txCtx, record)
	})
	if err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("transfer").Inc()
		return err
	}

	l.index.Record(record.SenderID, record.ReceiverID, record.Amount, record.CreatedAt)

	// Cache invalidation, not a correctness requirement: label lookups after
	// this transfer should reflect current names and account numbers.
	if err := l.directory.Refresh(ctx); err != nil {
		log.Printf("warning: directory refresh after transfer failed: %v", err)
	}

	l.publishTransferCompleted(record)
	metrics.TransfersTotal.Inc()
	return nil
}

// credit increases a balance inside an existing transaction. Shared with the
// loan scheduler so an approval can credit the account and retire the request
// in the same transaction.
func (l *Ledger) credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	account, err := l.accounts.Lock(ctx, accountID)
	if err != nil {
		return err
	}
	return l.accounts.UpdateBalance(ctx, account.ID, account.Balance.Add(amount), time.Now())
}

// lockPair locks both transfer participants in ascending ID order to prevent
// deadlocks between concurrent transfers. A missing account on either side is
// reported as ErrInvalidParticipants.
func (l *Ledger) lockPair(ctx context.Context, senderID, receiverID int64) (sender, receiver *Account, err error) {
	first, second := senderID, receiverID
	if second < first {
		first, second = second, first
	}

	firstAcc, err := l.accounts.Lock(ctx, first)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil, ErrInvalidParticipants
		}
		return nil, nil, err
	}
	secondAcc, err := l.accounts.Lock(ctx, second)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil, ErrInvalidParticipants
		}
		return nil, nil, err
	}

	if first == senderID {
		return firstAcc, secondAcc, nil
	}
	return secondAcc, firstAcc, nil
}

// publishTransferCompleted emits the event asynchronously so a transient
// broker failure can't make an already-committed transfer appear to fail.
func (l *Ledger) publishTransferCompleted(record *Transfer) {
	if l.events == nil {
		return
	}
	go func(t *Transfer) {
		if err := l.events.PublishTransferCompleted(context.Background(), t); err != nil {
			log.Printf("warning: failed to publish transfer completed event: %v", err)
		}
	}(record)
}
