package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidSession    = errors.New("invalid session key")
	ErrInvalidCard       = errors.New("invalid card number")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("withdrawal would drive balance below zero")
	ErrInvalidAction     = errors.New("unknown account action")
	ErrHistoryConflict   = errors.New("account history modified concurrently")
	ErrEmptyLedger       = errors.New("account ledger is empty")
	ErrInvalidPIN        = errors.New("invalid pin")
)
