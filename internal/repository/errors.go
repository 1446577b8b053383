package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateInvoice is returned when a payment with the same invoice
	// number already exists in the store.
	ErrDuplicateInvoice = errors.New("duplicate invoice number")

	// ErrAlreadySettled is returned by UpdateIfPending when the stored
	// payment has already left PENDING.
	ErrAlreadySettled = errors.New("payment already settled")
)
