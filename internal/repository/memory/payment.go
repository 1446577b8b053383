package memory

import (
	"context"
	"sync"

	"cinepay/internal/domain"
	"cinepay/internal/repository"
)

// PaymentStore is an in-memory implementation of repository.PaymentStore:
// two keyed collections, one per product line, guarded by a single lock.
// Reads return copies so callers never mutate stored state in place.
type PaymentStore struct {
	mu                 sync.RWMutex
	bookingPayments    map[string]*domain.Payment
	membershipPayments map[string]*domain.Payment
}

// NewPaymentStore creates an empty in-memory payment store.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		bookingPayments:    make(map[string]*domain.Payment),
		membershipPayments: make(map[string]*domain.Payment),
	}
}

func (s *PaymentStore) collection(kind domain.PaymentKind) map[string]*domain.Payment {
	if kind == domain.KindMembership {
		return s.membershipPayments
	}
	return s.bookingPayments
}

// Put persists a new payment, rejecting duplicate invoice numbers across
// both collections.
func (s *PaymentStore) Put(ctx context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookingPayments[payment.InvoiceNumber]; ok {
		return repository.ErrDuplicateInvoice
	}
	if _, ok := s.membershipPayments[payment.InvoiceNumber]; ok {
		return repository.ErrDuplicateInvoice
	}

	s.collection(payment.Kind)[payment.InvoiceNumber] = payment.Clone()
	return nil
}

// Upsert persists a payment, replacing any existing entry.
func (s *PaymentStore) Upsert(ctx context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection(payment.Kind)[payment.InvoiceNumber] = payment.Clone()
	return nil
}

// Get retrieves a payment by invoice number from either collection.
func (s *PaymentStore) Get(ctx context.Context, invoiceNumber string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.bookingPayments[invoiceNumber]; ok {
		return p.Clone(), nil
	}
	if p, ok := s.membershipPayments[invoiceNumber]; ok {
		return p.Clone(), nil
	}
	return nil, repository.ErrNotFound
}

// Update replaces an existing payment.
func (s *PaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection := s.collection(payment.Kind)
	if _, ok := collection[payment.InvoiceNumber]; !ok {
		return repository.ErrNotFound
	}
	collection[payment.InvoiceNumber] = payment.Clone()
	return nil
}

// UpdateIfPending replaces an existing payment while the stored entry is
// still PENDING. The check and the write happen under one lock, so of two
// racing settlement callbacks only the first can commit a transition.
func (s *PaymentStore) UpdateIfPending(ctx context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection := s.collection(payment.Kind)
	stored, ok := collection[payment.InvoiceNumber]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != domain.PaymentStatusPending {
		return repository.ErrAlreadySettled
	}
	collection[payment.InvoiceNumber] = payment.Clone()
	return nil
}

// Remove deletes a payment by invoice number. No-op if absent.
func (s *PaymentStore) Remove(ctx context.Context, invoiceNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bookingPayments, invoiceNumber)
	delete(s.membershipPayments, invoiceNumber)
	return nil
}

// ListAll returns every payment across both collections.
func (s *PaymentStore) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Payment, 0, len(s.bookingPayments)+len(s.membershipPayments))
	for _, p := range s.bookingPayments {
		result = append(result, p.Clone())
	}
	for _, p := range s.membershipPayments {
		result = append(result, p.Clone())
	}
	return result, nil
}

// ListOngoing returns PENDING payments owned by the given email.
func (s *PaymentStore) ListOngoing(ctx context.Context, email string) ([]*domain.Payment, error) {
	return s.listByPredicate(email, true), nil
}

// ListHistory returns non-PENDING payments owned by the given email.
func (s *PaymentStore) ListHistory(ctx context.Context, email string) ([]*domain.Payment, error) {
	return s.listByPredicate(email, false), nil
}

func (s *PaymentStore) listByPredicate(email string, pending bool) []*domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Payment, 0)
	scan := func(collection map[string]*domain.Payment) {
		for _, p := range collection {
			if (p.Status == domain.PaymentStatusPending) == pending && p.OwnerEmail() == email {
				result = append(result, p.Clone())
			}
		}
	}
	scan(s.bookingPayments)
	scan(s.membershipPayments)
	return result
}
