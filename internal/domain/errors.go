package domain

import "errors"

var (
	// ErrAccountNotFound is returned when an account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount is returned when an operation amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrInvalidParticipants is returned on a self-transfer or when either
	// side of a transfer doesn't exist.
	ErrInvalidParticipants = errors.New("invalid sender or receiver")

	// ErrInsufficientBalance is returned when an account can't cover a
	// withdrawal or transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrQueueEmpty is returned by loan approval when no requests are pending.
	ErrQueueEmpty = errors.New("no loan requests in the queue")
)
