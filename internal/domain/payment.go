package domain

import (
	"fmt"
	"strings"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentKind tags a payment as belonging to one of the two product lines.
type PaymentKind string

const (
	KindBooking    PaymentKind = "BOOKING"
	KindMembership PaymentKind = "MEMBERSHIP"
)

// Invoice number prefixes per product line.
const (
	BookingInvoicePrefix    = "BK"
	MembershipInvoicePrefix = "MB"
)

// KindOfInvoice derives the payment kind from the invoice number prefix.
// The kind is resolved exactly once, at creation; downstream code switches
// on the tag rather than re-inspecting the invoice string.
func KindOfInvoice(invoiceNumber string) (PaymentKind, error) {
	switch {
	case strings.HasPrefix(invoiceNumber, BookingInvoicePrefix):
		return KindBooking, nil
	case strings.HasPrefix(invoiceNumber, MembershipInvoicePrefix):
		return KindMembership, nil
	default:
		return "", fmt.Errorf("%w: invoice number %q matches no product line", ErrUnroutablePayment, invoiceNumber)
	}
}

// BookingStatus represents the status of the external booking aggregate.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusPaid     BookingStatus = "paid"
	BookingStatusCanceled BookingStatus = "canceled"
)

// Account identifies the owning user of a payment.
type Account struct {
	Email      string `json:"email"`
	Membership string `json:"membership,omitempty"`
}

// BookingItem is one line item of a booking (seat, ticket, concession).
type BookingItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Booking is a snapshot of the external booking aggregate a payment settles.
// TotalPrice is the pre-discount total and never changes; the payment's own
// TotalPrice is what promos mutate.
type Booking struct {
	User       Account       `json:"user"`
	Items      []BookingItem `json:"items,omitempty"`
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
}

// Payment is a booking or membership payment moving through settlement.
// Exactly one of Booking/User is set, matching Kind.
type Payment struct {
	InvoiceNumber string
	Kind          PaymentKind
	TotalPrice    float64
	Method        PaymentMethod
	Status        PaymentStatus
	Booking       *Booking
	User          *Account
	Promo         *Promo
}

// NewPayment constructs a PENDING payment, deriving the kind from the invoice
// prefix and checking it against the payload shape.
func NewPayment(invoiceNumber string, totalPrice float64, method PaymentMethod, booking *Booking, user *Account) (*Payment, error) {
	kind, err := KindOfInvoice(invoiceNumber)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindBooking:
		if booking == nil || user != nil {
			return nil, fmt.Errorf("%w: booking invoice %q requires a booking payload", ErrUnroutablePayment, invoiceNumber)
		}
	case KindMembership:
		if user == nil || booking != nil {
			return nil, fmt.Errorf("%w: membership invoice %q requires a user payload", ErrUnroutablePayment, invoiceNumber)
		}
	}

	return &Payment{
		InvoiceNumber: invoiceNumber,
		Kind:          kind,
		TotalPrice:    totalPrice,
		Method:        method,
		Status:        PaymentStatusPending,
		Booking:       booking,
		User:          user,
	}, nil
}

// OwnerEmail returns the email of the user this payment belongs to.
func (p *Payment) OwnerEmail() string {
	if p.Kind == KindBooking && p.Booking != nil {
		return p.Booking.User.Email
	}
	if p.User != nil {
		return p.User.Email
	}
	return ""
}

// Terminal reports whether the payment has reached a terminal status.
func (p *Payment) Terminal() bool {
	return p.Status != PaymentStatusPending
}

// Settle applies the terminal settlement outcome. A booking payment also
// carries its booking to "paid" or "canceled". Settling an already-terminal
// payment fails; callers decide whether that is an error or a duplicate
// report to ignore.
func (p *Payment) Settle(result bool) error {
	if p.Terminal() {
		return fmt.Errorf("%w: payment %s is already %s", ErrInvalidStateTransition, p.InvoiceNumber, p.Status)
	}

	if result {
		p.Status = PaymentStatusCompleted
		if p.Kind == KindBooking {
			p.Booking.Status = BookingStatusPaid
		}
	} else {
		p.Status = PaymentStatusFailed
		if p.Kind == KindBooking {
			p.Booking.Status = BookingStatusCanceled
		}
	}
	return nil
}

// ApplyPromo attaches a promo and replaces the payment total with the
// discounted price. Promos are booking-only and gated on minimum purchase.
func (p *Payment) ApplyPromo(promo *Promo) error {
	if p.Kind != KindBooking || p.Booking == nil {
		return fmt.Errorf("%w: payment %s is not a booking payment", ErrPromoNotApplicable, p.InvoiceNumber)
	}
	if !promo.IsValid(p.TotalPrice) {
		return fmt.Errorf("%w: total %.2f is below minimum purchase %.2f", ErrPromoNotApplicable, p.TotalPrice, promo.MinPurchase)
	}

	attached := *promo
	p.TotalPrice = promo.DiscountedPrice(p.Booking.TotalPrice)
	p.Promo = &attached
	return nil
}

// RemovePromo detaches the promo and restores the booking's original total.
// Removing an absent promo is a no-op.
func (p *Payment) RemovePromo() {
	if p.Promo != nil {
		p.TotalPrice = p.Booking.TotalPrice
	}
	p.Promo = nil
}

// Clone returns a deep copy of the payment. The method strategy is shared;
// it carries no mutable state.
func (p *Payment) Clone() *Payment {
	clone := *p
	if p.Booking != nil {
		booking := *p.Booking
		if p.Booking.Items != nil {
			booking.Items = make([]BookingItem, len(p.Booking.Items))
			copy(booking.Items, p.Booking.Items)
		}
		clone.Booking = &booking
	}
	if p.User != nil {
		user := *p.User
		clone.User = &user
	}
	if p.Promo != nil {
		promo := *p.Promo
		clone.Promo = &promo
	}
	return &clone
}
