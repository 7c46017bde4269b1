package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory AccountStore/TransferStore/LoanStore/
// TransactionManager for unit tests. WithTransaction serializes transactions
// with a dedicated mutex and restores a snapshot on error, which mirrors the
// serialization the real store provides through row locks.
type memStore struct {
	txMu sync.Mutex // held for the duration of each transaction

	mu         sync.Mutex
	accounts   map[int64]Account
	transfers  []Transfer
	loans      map[uuid.UUID]LoanRequest
	nextID     int64
	nextNumber int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts:   make(map[int64]Account),
		loans:      make(map[uuid.UUID]LoanRequest),
		nextID:     1,
		nextNumber: 10000,
	}
}

// addAccount seeds an account with a fixed id, bypassing Create.
func (m *memStore) addAccount(id int64, name string, balance string, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[id] = Account{
		ID:            id,
		Name:          name,
		AccountNumber: fmt.Sprintf("%d", m.nextNumber),
		Balance:       decimal.RequireFromString(balance),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	m.nextNumber++
	if id >= m.nextID {
		m.nextID = id + 1
	}
}

func (m *memStore) balance(id int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].Balance
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (m *memStore) Lock(ctx context.Context, id int64) (*Account, error) {
	return m.GetByID(ctx, id)
}

func (m *memStore) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.Balance = balance
	account.UpdatedAt = updatedAt
	m.accounts[id] = account
	return nil
}

func (m *memStore) Create(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account.ID = m.nextID
	account.AccountNumber = fmt.Sprintf("%d", m.nextNumber)
	m.nextID++
	m.nextNumber++
	m.accounts[account.ID] = *account
	return nil
}

func (m *memStore) List(ctx context.Context) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Account, 0, len(m.accounts))
	for id := int64(0); id < m.nextID; id++ {
		if a, ok := m.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CountTransfersFor(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.transfers {
		if t.SenderID == id || t.ReceiverID == id {
			n++
		}
	}
	return n, nil
}

// TransferStore

func (m *memStore) CreateTransfer(ctx context.Context, transfer *Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, *transfer)
	return nil
}

func (m *memStore) ListAll(ctx context.Context) ([]Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transfer, len(m.transfers))
	copy(out, m.transfers)
	return out, nil
}

// LoanStore

func (m *memStore) CreateLoan(ctx context.Context, request *LoanRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[request.ID] = *request
	return nil
}

func (m *memStore) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[id]; !ok {
		return fmt.Errorf("loan request %s not found", id)
	}
	delete(m.loans, id)
	return nil
}

func (m *memStore) ListPending(ctx context.Context) ([]LoanRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LoanRequest, 0, len(m.loans))
	for _, r := range m.loans {
		out = append(out, r)
	}
	return out, nil
}

// TransactionManager

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	accountsSnap := make(map[int64]Account, len(m.accounts))
	for id, a := range m.accounts {
		accountsSnap[id] = a
	}
	transfersSnap := len(m.transfers)
	loansSnap := make(map[uuid.UUID]LoanRequest, len(m.loans))
	for id, r := range m.loans {
		loansSnap[id] = r
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.accounts = accountsSnap
		m.transfers = m.transfers[:transfersSnap]
		m.loans = loansSnap
		m.mu.Unlock()
		return err
	}
	return nil
}

// Interface adapters: memStore exposes transfer and loan operations under the
// names the domain interfaces expect.

type memTransferStore struct{ *memStore }

func (s memTransferStore) Create(ctx context.Context, t *Transfer) error { return s.CreateTransfer(ctx, t) }

type memLoanStore struct{ *memStore }

func (s memLoanStore) Create(ctx context.Context, r *LoanRequest) error { return s.CreateLoan(ctx, r) }
func (s memLoanStore) Delete(ctx context.Context, id uuid.UUID) error   { return s.DeleteLoan(ctx, id) }

// newTestLedger wires a ledger over a fresh memStore.
func newTestLedger(store *memStore) (*Ledger, *TransactionIndex, *Directory) {
	directory := NewDirectory(store)
	index := NewTransactionIndex()
	ledger := NewLedger(store, memTransferStore{store}, store, index, directory, nil)
	return ledger, index, directory
}

// newTestScheduler wires a scheduler (and its ledger) over a fresh memStore.
func newTestScheduler(store *memStore) (*Scheduler, *Ledger) {
	ledger, _, directory := newTestLedger(store)
	scheduler := NewScheduler(store, memLoanStore{store}, store, ledger, directory, nil)
	return scheduler, ledger
}
