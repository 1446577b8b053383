package tests

import (
	"context"
	"errors"
	"testing"

	"cinepay/internal/broker"
	"cinepay/internal/domain"
	"cinepay/internal/repository"
	"cinepay/internal/repository/memory"
	"cinepay/internal/service"
)

func newPaymentService(publisher broker.Publisher, notifier service.Notifier) (*service.PaymentService, repository.PaymentStore, repository.PromoStore) {
	store := memory.NewPaymentStore()
	promoStore := memory.NewPromoStore()
	resolver := domain.NewMethodResolver(fixedAuthorize(true))
	return service.NewPaymentService(store, promoStore, resolver, publisher, notifier), store, promoStore
}

func TestCreatePayment_StoresPendingAndPublishes(t *testing.T) {
	t.Parallel()

	publisher := NewMockPublisher()
	svc, store, _ := newPaymentService(publisher, NewMockNotifier())

	payment, err := svc.Create(context.Background(), newBookingRequest("BK-1001", "alice@example.com", 150000))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("payment status = %s, want %s", payment.Status, domain.PaymentStatusPending)
	}
	if payment.Kind != domain.KindBooking {
		t.Errorf("payment kind = %s, want %s", payment.Kind, domain.KindBooking)
	}

	stored, err := store.Get(context.Background(), "BK-1001")
	if err != nil {
		t.Fatalf("Get() after create error = %v", err)
	}
	if stored.TotalPrice != 150000 {
		t.Errorf("stored total price = %f, want 150000", stored.TotalPrice)
	}

	published := publisher.PublishedTo(broker.TopicPaymentCreation)
	if len(published) != 1 {
		t.Fatalf("published %d creation messages, want 1", len(published))
	}
	msg, ok := published[0].Payload.(broker.CreationMessage)
	if !ok {
		t.Fatalf("published payload type = %T, want broker.CreationMessage", published[0].Payload)
	}
	if msg.InvoiceNumber != "BK-1001" {
		t.Errorf("message invoice = %s, want BK-1001", msg.InvoiceNumber)
	}
	if msg.PaymentMethod != "BankTransferBCA" {
		t.Errorf("message payment method = %s, want BankTransferBCA", msg.PaymentMethod)
	}
	if msg.Booking == nil || msg.Booking.User.Email != "alice@example.com" {
		t.Errorf("message booking payload missing or wrong owner: %+v", msg.Booking)
	}
}

func TestCreatePayment_DuplicateInvoiceKeepsFirstEntry(t *testing.T) {
	t.Parallel()

	publisher := NewMockPublisher()
	svc, store, _ := newPaymentService(publisher, NewMockNotifier())

	ctx := context.Background()
	if _, err := svc.Create(ctx, newBookingRequest("BK-2001", "alice@example.com", 100000)); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := svc.Create(ctx, newBookingRequest("BK-2001", "mallory@example.com", 999999))
	if !errors.Is(err, repository.ErrDuplicateInvoice) {
		t.Fatalf("second Create() error = %v, want ErrDuplicateInvoice", err)
	}

	stored, err := store.Get(ctx, "BK-2001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.TotalPrice != 100000 {
		t.Errorf("stored total price = %f, want the original 100000", stored.TotalPrice)
	}
	if stored.OwnerEmail() != "alice@example.com" {
		t.Errorf("stored owner = %s, want alice@example.com", stored.OwnerEmail())
	}
	if got := len(publisher.PublishedTo(broker.TopicPaymentCreation)); got != 1 {
		t.Errorf("published %d creation messages, want 1", got)
	}
}

func TestCreatePayment_RollsBackWhenPublishFails(t *testing.T) {
	t.Parallel()

	publisher := NewMockPublisher()
	publisher.PublishError = errors.New("broker down")
	svc, store, _ := newPaymentService(publisher, NewMockNotifier())

	ctx := context.Background()
	_, err := svc.Create(ctx, newBookingRequest("BK-3001", "alice@example.com", 100000))
	if !errors.Is(err, service.ErrBrokerUnavailable) {
		t.Fatalf("Create() error = %v, want ErrBrokerUnavailable", err)
	}

	if _, err := store.Get(ctx, "BK-3001"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get() after rollback error = %v, want ErrNotFound", err)
	}

	// A retry with a working broker must succeed.
	publisher.PublishError = nil
	if _, err := svc.Create(ctx, newBookingRequest("BK-3001", "alice@example.com", 100000)); err != nil {
		t.Errorf("retry Create() error = %v", err)
	}
}

func TestCreatePayment_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     service.CreatePaymentRequest
		wantErr error
	}{
		{
			name: "empty invoice number",
			req: service.CreatePaymentRequest{
				TotalPrice:    100000,
				PaymentMethod: "QRIS",
				Booking:       newBooking("alice@example.com", 100000),
			},
			wantErr: service.ErrInvalidInvoiceNumber,
		},
		{
			name: "non-positive total",
			req: service.CreatePaymentRequest{
				InvoiceNumber: "BK-4001",
				TotalPrice:    0,
				PaymentMethod: "QRIS",
				Booking:       newBooking("alice@example.com", 0),
			},
			wantErr: service.ErrInvalidTotalPrice,
		},
		{
			name: "unknown payment method",
			req: service.CreatePaymentRequest{
				InvoiceNumber: "BK-4002",
				TotalPrice:    100000,
				PaymentMethod: "Cash",
				Booking:       newBooking("alice@example.com", 100000),
			},
			wantErr: domain.ErrUnknownPaymentMethod,
		},
		{
			name: "unroutable invoice prefix",
			req: service.CreatePaymentRequest{
				InvoiceNumber: "XX-4003",
				TotalPrice:    100000,
				PaymentMethod: "QRIS",
				Booking:       newBooking("alice@example.com", 100000),
			},
			wantErr: domain.ErrUnroutablePayment,
		},
		{
			name: "booking invoice without booking payload",
			req: service.CreatePaymentRequest{
				InvoiceNumber: "BK-4004",
				TotalPrice:    100000,
				PaymentMethod: "QRIS",
				User:          &domain.Account{Email: "alice@example.com"},
			},
			wantErr: domain.ErrUnroutablePayment,
		},
		{
			name: "membership invoice without user payload",
			req: service.CreatePaymentRequest{
				InvoiceNumber: "MB-4005",
				TotalPrice:    100000,
				PaymentMethod: "QRIS",
				Booking:       newBooking("alice@example.com", 100000),
			},
			wantErr: domain.ErrUnroutablePayment,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := NewMockPublisher()
			svc, store, _ := newPaymentService(publisher, NewMockNotifier())

			_, err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if len(publisher.Published) != 0 {
				t.Errorf("published %d messages on a rejected create, want 0", len(publisher.Published))
			}
			if tt.req.InvoiceNumber != "" {
				if _, err := store.Get(context.Background(), tt.req.InvoiceNumber); !errors.Is(err, repository.ErrNotFound) {
					t.Errorf("rejected create left an entry in the store")
				}
			}
		})
	}
}

func TestRequestValidation_PublishesWithoutStoreLookup(t *testing.T) {
	t.Parallel()

	publisher := NewMockPublisher()
	svc, _, _ := newPaymentService(publisher, NewMockNotifier())

	// The invoice does not exist in the store; the request is still published
	// and the worker decides whether it can settle it.
	if err := svc.RequestValidation(context.Background(), "BK-5001"); err != nil {
		t.Fatalf("RequestValidation() error = %v", err)
	}

	published := publisher.PublishedTo(broker.TopicPaymentValidation)
	if len(published) != 1 {
		t.Fatalf("published %d validation requests, want 1", len(published))
	}
	msg, ok := published[0].Payload.(broker.ValidationRequest)
	if !ok {
		t.Fatalf("published payload type = %T, want broker.ValidationRequest", published[0].Payload)
	}
	if msg.InvoiceNumber != "BK-5001" {
		t.Errorf("request invoice = %s, want BK-5001", msg.InvoiceNumber)
	}
}

func TestQueries_FilterByOwnerAndStatus(t *testing.T) {
	t.Parallel()

	publisher := NewMockPublisher()
	svc, _, _ := newPaymentService(publisher, NewMockNotifier())

	ctx := context.Background()
	seeds := []service.CreatePaymentRequest{
		newBookingRequest("BK-6001", "alice@example.com", 100000),
		newMembershipRequest("MB-6002", "alice@example.com", 50000),
		newBookingRequest("BK-6003", "bob@example.com", 75000),
	}
	for _, req := range seeds {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Create(%s) error = %v", req.InvoiceNumber, err)
		}
	}

	// Settle one of alice's payments so it moves to history.
	if err := svc.ReportSettlement(ctx, "BK-6001", "alice@example.com", true); err != nil {
		t.Fatalf("ReportSettlement() error = %v", err)
	}

	ongoing, err := svc.GetOngoing(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetOngoing() error = %v", err)
	}
	if len(ongoing) != 1 || ongoing[0].InvoiceNumber != "MB-6002" {
		t.Errorf("GetOngoing() = %v, want only MB-6002", invoiceNumbers(ongoing))
	}

	history, err := svc.GetHistory(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].InvoiceNumber != "BK-6001" {
		t.Errorf("GetHistory() = %v, want only BK-6001", invoiceNumbers(history))
	}

	all, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("GetAll() returned %d payments, want 3 (settled entries are retained)", len(all))
	}
}

func invoiceNumbers(payments []*domain.Payment) []string {
	numbers := make([]string, 0, len(payments))
	for _, p := range payments {
		numbers = append(numbers, p.InvoiceNumber)
	}
	return numbers
}
