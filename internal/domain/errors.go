// Package domain contains the core entities of the settlement pipeline:
// payments, payment methods and promos.
package domain

import "errors"

// Domain errors represent business rule violations. Handlers map them to
// HTTP status codes centrally.
var (
	// ErrUnknownPaymentMethod is returned when a selector matches no known
	// payment method.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrUnroutablePayment is returned when an invoice number matches no
	// product line, or when the payload does not fit the derived kind.
	ErrUnroutablePayment = errors.New("payment is not routable")

	// ErrPromoNotApplicable is returned when a promo cannot be applied to a
	// payment.
	ErrPromoNotApplicable = errors.New("promo not applicable to this payment")

	// ErrInvalidStateTransition is returned on a transition out of a terminal
	// payment status.
	ErrInvalidStateTransition = errors.New("invalid payment state transition")
)
