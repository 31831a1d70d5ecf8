package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Transfer errors
	ErrInvalidAmount     = errors.New("transfer amount out of accepted range")
	ErrSelfTransfer      = errors.New("cannot transfer money to yourself")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrTransferNotFound  = errors.New("transfer not found")

	// ErrRetryExhausted wraps a transient store conflict that survived
	// every retry attempt.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)
