package broker

import "cinepay/internal/domain"

// CreationMessage announces a new payment to the worker. Exactly one of
// Booking/User is set, matching Kind; the payload is a copy of the gateway's
// state, never a shared reference.
type CreationMessage struct {
	InvoiceNumber string             `json:"invoice_number"`
	Kind          domain.PaymentKind `json:"kind"`
	TotalPrice    float64            `json:"total_price"`
	PaymentMethod string             `json:"payment_method"`
	Booking       *domain.Booking    `json:"booking,omitempty"`
	User          *domain.Account    `json:"user,omitempty"`
	Promo         *domain.Promo      `json:"promo,omitempty"`
}

// ValidationRequest asks the worker to settle the payment with the given
// invoice number. A request for an invoice the worker never saw is dropped.
type ValidationRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

// SettlementReport is the worker's reply to the gateway with the terminal
// outcome of one settlement. CorrelationID ties retries and dead-lettered
// copies of the same report together.
type SettlementReport struct {
	CorrelationID string `json:"correlation_id"`
	InvoiceNumber string `json:"invoice_number"`
	Email         string `json:"email"`
	Result        bool   `json:"result"`
}
