package entity

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBadRequest marks a payment request that could not be resolved into a payment intent.
	ErrBadRequest      = errors.New("bad payment request")
	ErrInvoiceNotFound = errors.New("invoice not found")

	ErrNotReady            = errors.New("not ready")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrWindowClosed        = errors.New("window closed")
	ErrInvoicePaid         = errors.New("invoice already paid")

	ErrStatusRegression = errors.New("invoice status regression")
)
