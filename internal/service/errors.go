package service

import "errors"

var (
	// ErrInvalidInvoiceNumber is returned when the invoice number is empty.
	ErrInvalidInvoiceNumber = errors.New("invalid invoice number")

	// ErrInvalidTotalPrice is returned when the total price is not positive.
	ErrInvalidTotalPrice = errors.New("invalid total price")

	// ErrInvalidPromoName is returned when a promo name is empty.
	ErrInvalidPromoName = errors.New("invalid promo name")

	// ErrInvalidDiscount is returned when a discount is not a fraction in [0, 1].
	ErrInvalidDiscount = errors.New("invalid discount fraction")

	// ErrBrokerUnavailable is returned when a message cannot be published.
	ErrBrokerUnavailable = errors.New("message broker unavailable")
)
