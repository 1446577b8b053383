package tests

import (
	"context"
	"sync"

	"cinepay/internal/broker"
	"cinepay/internal/domain"
	"cinepay/internal/service"
)

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// PublishedMessage records one publish call.
type PublishedMessage struct {
	Topic   string
	Payload any
}

// MockPublisher is a mock implementation of broker.Publisher.
type MockPublisher struct {
	mu        sync.Mutex
	Published []PublishedMessage

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedMessage{Topic: topic, Payload: payload})
	return nil
}

// PublishedTo returns the messages published to the given topic.
func (m *MockPublisher) PublishedTo(topic string) []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []PublishedMessage
	for _, msg := range m.Published {
		if msg.Topic == topic {
			result = append(result, msg)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// MockNotifier is a mock implementation of service.Notifier.
type MockNotifier struct {
	mu sync.Mutex

	// Counters for verification
	ConfirmCalls  int
	CancelCalls   int
	ActivateCalls int

	LastInvoice string
	LastEmail   string
	LastActive  bool
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) ConfirmBooking(ctx context.Context, invoiceNumber, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmCalls++
	m.LastInvoice = invoiceNumber
	m.LastEmail = email
	return nil
}

func (m *MockNotifier) CancelBooking(ctx context.Context, invoiceNumber, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls++
	m.LastInvoice = invoiceNumber
	m.LastEmail = email
	return nil
}

func (m *MockNotifier) ActivateMembership(ctx context.Context, email string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActivateCalls++
	m.LastEmail = email
	m.LastActive = active
	return nil
}

var _ service.Notifier = (*MockNotifier)(nil)

// ──────────────────────────────────────────────
// MOCK REPORTER
// ──────────────────────────────────────────────

// MockReporter is a mock implementation of worker.Reporter.
type MockReporter struct {
	mu      sync.Mutex
	Reports []broker.SettlementReport

	// Error injection
	ReportError error
}

// NewMockReporter creates a new mock reporter.
func NewMockReporter() *MockReporter {
	return &MockReporter{}
}

func (m *MockReporter) Report(ctx context.Context, report broker.SettlementReport) error {
	if m.ReportError != nil {
		return m.ReportError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, report)
	return nil
}

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

// fixedAuthorize returns an oracle with a deterministic outcome.
func fixedAuthorize(result bool) domain.AuthorizeFunc {
	return func(string) bool { return result }
}

// newBooking builds a booking snapshot owned by the given email.
func newBooking(email string, totalPrice float64) *domain.Booking {
	return &domain.Booking{
		User:       domain.Account{Email: email},
		Items:      []domain.BookingItem{{Name: "Seat D5", Price: totalPrice}},
		TotalPrice: totalPrice,
		Status:     domain.BookingStatusPending,
	}
}

// newBookingRequest builds a creation request for a booking payment.
func newBookingRequest(invoiceNumber, email string, totalPrice float64) service.CreatePaymentRequest {
	return service.CreatePaymentRequest{
		InvoiceNumber: invoiceNumber,
		TotalPrice:    totalPrice,
		PaymentMethod: "BankTransferBCA",
		Booking:       newBooking(email, totalPrice),
	}
}

// newMembershipRequest builds a creation request for a membership payment.
func newMembershipRequest(invoiceNumber, email string, totalPrice float64) service.CreatePaymentRequest {
	return service.CreatePaymentRequest{
		InvoiceNumber: invoiceNumber,
		TotalPrice:    totalPrice,
		PaymentMethod: "EWalletGoPay",
		User:          &domain.Account{Email: email},
	}
}
