package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cinepay/internal/broker"
	"cinepay/internal/domain"
	"cinepay/internal/repository"
)

// Notifier reaches the external booking and account services with
// compensating actions after settlement.
type Notifier interface {
	// ConfirmBooking issues a payment confirmation to the booking owner.
	ConfirmBooking(ctx context.Context, invoiceNumber, email string) error

	// CancelBooking issues a booking cancellation to the booking owner.
	CancelBooking(ctx context.Context, invoiceNumber, email string) error

	// ActivateMembership issues a membership activation request carrying the
	// settlement result.
	ActivateMembership(ctx context.Context, email string, active bool) error
}

// PaymentService is the gateway side of the settlement pipeline: it owns the
// authoritative payment store, publishes creation and validation-request
// messages, and applies settlement callbacks with their compensations.
type PaymentService struct {
	store      repository.PaymentStore
	promoStore repository.PromoStore
	resolver   *domain.MethodResolver
	publisher  broker.Publisher
	notifier   Notifier
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	store repository.PaymentStore,
	promoStore repository.PromoStore,
	resolver *domain.MethodResolver,
	publisher broker.Publisher,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		store:      store,
		promoStore: promoStore,
		resolver:   resolver,
		publisher:  publisher,
		notifier:   notifier,
	}
}

// CreatePaymentRequest contains the parameters for creating a payment.
// Exactly one of Booking/User must be set.
type CreatePaymentRequest struct {
	InvoiceNumber string
	TotalPrice    float64
	PaymentMethod string
	Booking       *domain.Booking
	User          *domain.Account
}

// Create stores a new PENDING payment and announces it to the worker. The
// store write commits first; if the publish fails the write is rolled back
// so a client retry can succeed.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	if req.InvoiceNumber == "" {
		return nil, ErrInvalidInvoiceNumber
	}
	if req.TotalPrice <= 0 {
		return nil, ErrInvalidTotalPrice
	}

	method, err := s.resolver.Resolve(req.InvoiceNumber, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(req.InvoiceNumber, req.TotalPrice, method, req.Booking, req.User)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, payment); err != nil {
		return nil, err
	}

	msg := broker.CreationMessage{
		InvoiceNumber: payment.InvoiceNumber,
		Kind:          payment.Kind,
		TotalPrice:    payment.TotalPrice,
		PaymentMethod: req.PaymentMethod,
		Booking:       payment.Booking,
		User:          payment.User,
		Promo:         payment.Promo,
	}
	if err := s.publisher.Publish(ctx, broker.TopicPaymentCreation, msg); err != nil {
		if rbErr := s.store.Remove(ctx, payment.InvoiceNumber); rbErr != nil {
			log.Printf("failed to roll back payment %s after publish failure: %v", payment.InvoiceNumber, rbErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	return payment, nil
}

// RequestValidation asks the worker to settle the payment. It does not block
// for the outcome; that arrives later through ReportSettlement.
func (s *PaymentService) RequestValidation(ctx context.Context, invoiceNumber string) error {
	if invoiceNumber == "" {
		return ErrInvalidInvoiceNumber
	}

	msg := broker.ValidationRequest{InvoiceNumber: invoiceNumber}
	if err := s.publisher.Publish(ctx, broker.TopicPaymentValidation, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	return nil
}

// ReportSettlement applies the settlement outcome reported by the worker and
// triggers the compensating actions. A duplicate report for an
// already-terminal payment is a no-op.
func (s *PaymentService) ReportSettlement(ctx context.Context, invoiceNumber, email string, result bool) error {
	payment, err := s.store.Get(ctx, invoiceNumber)
	if err != nil {
		return err
	}

	if payment.Terminal() {
		log.Printf("duplicate settlement report for %s ignored, status stays %s", invoiceNumber, payment.Status)
		return nil
	}

	if err := payment.Settle(result); err != nil {
		return err
	}

	// The conditional write is the arbiter under concurrent callbacks: only
	// the report that commits the PENDING->terminal transition runs the
	// compensations below.
	if err := s.store.UpdateIfPending(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			log.Printf("duplicate settlement report for %s ignored, payment already settled", invoiceNumber)
			return nil
		}
		return err
	}

	if email == "" {
		email = payment.OwnerEmail()
	}

	// Compensations are fire-and-forget toward external collaborators;
	// failures must not undo the recorded settlement.
	switch payment.Kind {
	case domain.KindBooking:
		if result {
			if err := s.notifier.ConfirmBooking(ctx, invoiceNumber, email); err != nil {
				log.Printf("failed to confirm booking for %s: %v", invoiceNumber, err)
			}
		} else {
			if err := s.notifier.CancelBooking(ctx, invoiceNumber, email); err != nil {
				log.Printf("failed to cancel booking for %s: %v", invoiceNumber, err)
			}
		}
	case domain.KindMembership:
		if result {
			if err := s.notifier.ActivateMembership(ctx, email, result); err != nil {
				log.Printf("failed to activate membership for %s: %v", invoiceNumber, err)
			}
		}
	}

	return nil
}

// Get retrieves a payment by invoice number.
func (s *PaymentService) Get(ctx context.Context, invoiceNumber string) (*domain.Payment, error) {
	if invoiceNumber == "" {
		return nil, ErrInvalidInvoiceNumber
	}
	return s.store.Get(ctx, invoiceNumber)
}

// GetAll lists every payment the gateway knows about. Settled payments are
// retained so history queries keep working.
func (s *PaymentService) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	return s.store.ListAll(ctx)
}

// GetOngoing lists PENDING payments owned by the given email.
func (s *PaymentService) GetOngoing(ctx context.Context, email string) ([]*domain.Payment, error) {
	return s.store.ListOngoing(ctx, email)
}

// GetHistory lists settled payments owned by the given email.
func (s *PaymentService) GetHistory(ctx context.Context, email string) ([]*domain.Payment, error) {
	return s.store.ListHistory(ctx, email)
}

// ApplyPromo attaches the promo to the payment and persists the discounted
// total.
func (s *PaymentService) ApplyPromo(ctx context.Context, invoiceNumber string, promoID int) error {
	payment, err := s.store.Get(ctx, invoiceNumber)
	if err != nil {
		return err
	}

	promo, err := s.promoStore.Get(ctx, promoID)
	if err != nil {
		return err
	}

	if err := payment.ApplyPromo(promo); err != nil {
		return err
	}
	return s.store.Update(ctx, payment)
}

// RemovePromo detaches any promo from the payment and restores the original
// total. Removing from a payment without a promo is a no-op.
func (s *PaymentService) RemovePromo(ctx context.Context, invoiceNumber string) error {
	payment, err := s.store.Get(ctx, invoiceNumber)
	if err != nil {
		return err
	}

	payment.RemovePromo()
	return s.store.Update(ctx, payment)
}
