package repository

import (
	"context"

	"cinepay/internal/domain"
)

// PaymentStore defines the settlement-store operations for payments. The
// gateway and the worker each own an independent instance; the gateway is
// the system of record (Put rejects duplicates), while the worker treats its
// copy as a working cache (Upsert).
type PaymentStore interface {
	// Put persists a new payment. Fails with ErrDuplicateInvoice if the
	// invoice number already exists in either collection.
	Put(ctx context.Context, payment *domain.Payment) error

	// Upsert persists a payment, replacing any existing entry with the same
	// invoice number. Used on at-least-once redelivery.
	Upsert(ctx context.Context, payment *domain.Payment) error

	// Get retrieves a payment by invoice number.
	Get(ctx context.Context, invoiceNumber string) (*domain.Payment, error)

	// Update replaces an existing payment. Fails with ErrNotFound if absent.
	Update(ctx context.Context, payment *domain.Payment) error

	// UpdateIfPending replaces an existing payment only while the stored
	// entry is still PENDING, atomically with the check. Fails with
	// ErrNotFound if absent and ErrAlreadySettled if the entry is terminal,
	// so concurrent settlement callbacks apply exactly one transition.
	UpdateIfPending(ctx context.Context, payment *domain.Payment) error

	// Remove deletes a payment by invoice number. No-op if absent.
	Remove(ctx context.Context, invoiceNumber string) error

	// ListAll returns every payment in the store.
	ListAll(ctx context.Context) ([]*domain.Payment, error)

	// ListOngoing returns PENDING payments owned by the given email.
	ListOngoing(ctx context.Context, email string) ([]*domain.Payment, error)

	// ListHistory returns non-PENDING payments owned by the given email.
	ListHistory(ctx context.Context, email string) ([]*domain.Payment, error)
}
