package model

import "errors"

// Exchange errors. All of them abort the whole operation with no persisted
// side effects; callers match them with errors.Is.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSlippageExceeded    = errors.New("slippage exceeded")
	ErrPoolLocked          = errors.New("pool locked")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOverflow            = errors.New("arithmetic overflow")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidPool         = errors.New("invalid pool")
)
