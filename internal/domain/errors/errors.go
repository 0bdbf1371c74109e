package errors

import "errors"

var (
	ErrAlreadyExists         = errors.New("already exists")
	ErrNotFound              = errors.New("not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnsupportedService    = errors.New("unsupported service type")
	ErrOrderAlreadyProcessed = errors.New("order already processed")
	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrWriteNotVerified      = errors.New("write not verified by read-back")
	ErrNoPendingConversions  = errors.New("no pending conversions")
	ErrPaymentNotConfirmed   = errors.New("payment not confirmed")
	ErrQueueFull             = errors.New("generation queue is full")
)
