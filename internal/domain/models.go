package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the core entity holding a customer's balance.
// Balances are exact decimals and never go negative; every balance-affecting
// operation refreshes UpdatedAt.
type Account struct {
	ID            int64           // Unique identifier, assigned by the store on creation
	Name          string          // Display name of the account holder
	AccountNumber string          // Unique, sequentially assigned by the store
	Balance       decimal.Decimal // Current balance, always >= 0
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transfer is an immutable record of a completed money movement between two
// accounts. Exactly one record is appended per successful transfer; deposits
// and withdrawals do not produce records.
type Transfer struct {
	ID         uuid.UUID
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal // Always > 0
	CreatedAt  time.Time
}

// LoanRequest is a pending loan admission. It lives in the scheduler until
// approved; approval is the only terminal transition.
type LoanRequest struct {
	ID            uuid.UUID
	UserID        int64
	Amount        decimal.Decimal // Always > 0
	PriorityScore int64
	SubmittedAt   time.Time
}

// NewAccount creates an Account ready for insertion; the store assigns the
// ID and account number on Create.
func NewAccount(name string, balance decimal.Decimal) *Account {
	now := time.Now()
	return &Account{
		Name:      name,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTransfer creates a Transfer record for a committed movement.
func NewTransfer(senderID, receiverID int64, amount decimal.Decimal) *Transfer {
	return &Transfer{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		CreatedAt:  time.Now(),
	}
}

// Direction tags a transaction view relative to the queried account.
type Direction string

const (
	DirectionSend     Direction = "Send"
	DirectionReceived Direction = "Received"
)

// TransactionView is a transfer edge rendered for the account that asked,
// with counterparty labels resolved through the directory.
type TransactionView struct {
	Date      string // "02-01-2006 15:04:05"
	Direction Direction
	Amount    decimal.Decimal
	From      string // "name - account_number" of the sender
	To        string // "name - account_number" of the receiver
}

// LoanView is a pending loan request rendered with its directory label.
type LoanView struct {
	User          string // "name - account_number" of the requester
	Amount        decimal.Decimal
	PriorityScore int64
}
