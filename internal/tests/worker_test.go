package tests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cinepay/internal/broker"
	"cinepay/internal/domain"
	"cinepay/internal/repository"
	"cinepay/internal/repository/memory"
	"cinepay/internal/worker"
)

func creationMessageBytes(t *testing.T, msg broker.CreationMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal creation message: %v", err)
	}
	return data
}

func validationRequestBytes(t *testing.T, invoiceNumber string) []byte {
	t.Helper()
	data, err := json.Marshal(broker.ValidationRequest{InvoiceNumber: invoiceNumber})
	if err != nil {
		t.Fatalf("failed to marshal validation request: %v", err)
	}
	return data
}

func bookingCreationMessage(invoiceNumber, email string, totalPrice float64) broker.CreationMessage {
	return broker.CreationMessage{
		InvoiceNumber: invoiceNumber,
		Kind:          domain.KindBooking,
		TotalPrice:    totalPrice,
		PaymentMethod: "BankTransferBCA",
		Booking:       newBooking(email, totalPrice),
	}
}

func TestSettler_CreationIsIdempotent(t *testing.T) {
	t.Parallel()

	store := memory.NewPaymentStore()
	settler := worker.NewSettler(store, domain.NewMethodResolver(fixedAuthorize(true)), NewMockReporter())

	settler.HandleCreation(creationMessageBytes(t, bookingCreationMessage("BK-1001", "alice@example.com", 100000)))
	// Redelivery with a newer payload overwrites instead of failing.
	settler.HandleCreation(creationMessageBytes(t, bookingCreationMessage("BK-1001", "alice@example.com", 85000)))

	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("store holds %d payments after redelivery, want 1", len(all))
	}
	if all[0].TotalPrice != 85000 {
		t.Errorf("stored total = %f, want the latest 85000", all[0].TotalPrice)
	}
}

func TestSettler_CreationDropsBadMessages(t *testing.T) {
	t.Parallel()

	store := memory.NewPaymentStore()
	settler := worker.NewSettler(store, domain.NewMethodResolver(fixedAuthorize(true)), NewMockReporter())

	messages := [][]byte{
		[]byte("{not json"),
		creationMessageBytes(t, broker.CreationMessage{
			InvoiceNumber: "BK-1101",
			TotalPrice:    100000,
			PaymentMethod: "Cash",
			Booking:       newBooking("alice@example.com", 100000),
		}),
		creationMessageBytes(t, broker.CreationMessage{
			InvoiceNumber: "XX-1102",
			TotalPrice:    100000,
			PaymentMethod: "QRIS",
			Booking:       newBooking("alice@example.com", 100000),
		}),
	}
	for _, msg := range messages {
		settler.HandleCreation(msg)
	}

	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("store holds %d payments after bad messages, want 0", len(all))
	}
}

func TestSettler_ValidationSettlesAndReports(t *testing.T) {
	t.Parallel()

	store := memory.NewPaymentStore()
	reporter := NewMockReporter()
	settler := worker.NewSettler(store, domain.NewMethodResolver(fixedAuthorize(true)), reporter)

	settler.HandleCreation(creationMessageBytes(t, bookingCreationMessage("BK-1201", "alice@example.com", 100000)))
	settler.HandleValidation(validationRequestBytes(t, "BK-1201"))

	if len(reporter.Reports) != 1 {
		t.Fatalf("reported %d outcomes, want 1", len(reporter.Reports))
	}
	report := reporter.Reports[0]
	if report.InvoiceNumber != "BK-1201" || !report.Result {
		t.Errorf("report = %+v, want invoice BK-1201 with result true", report)
	}
	if report.Email != "alice@example.com" {
		t.Errorf("report email = %s, want the payment owner alice@example.com", report.Email)
	}
	if report.CorrelationID == "" {
		t.Error("report carries no correlation id")
	}

	// The settled entry leaves the worker's store.
	if _, err := store.Get(context.Background(), "BK-1201"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get() after validation error = %v, want ErrNotFound", err)
	}
}

func TestSettler_ValidationReportsDecline(t *testing.T) {
	t.Parallel()

	store := memory.NewPaymentStore()
	reporter := NewMockReporter()
	settler := worker.NewSettler(store, domain.NewMethodResolver(fixedAuthorize(false)), reporter)

	settler.HandleCreation(creationMessageBytes(t, bookingCreationMessage("BK-1202", "alice@example.com", 100000)))
	settler.HandleValidation(validationRequestBytes(t, "BK-1202"))

	if len(reporter.Reports) != 1 {
		t.Fatalf("reported %d outcomes, want 1", len(reporter.Reports))
	}
	if reporter.Reports[0].Result {
		t.Error("report result = true, want false from the declining oracle")
	}
}

func TestSettler_OrphanValidationDropped(t *testing.T) {
	t.Parallel()

	store := memory.NewPaymentStore()
	reporter := NewMockReporter()
	settler := worker.NewSettler(store, domain.NewMethodResolver(fixedAuthorize(true)), reporter)

	settler.HandleValidation(validationRequestBytes(t, "BK-9999"))
	settler.HandleValidation([]byte("{not json"))

	if len(reporter.Reports) != 0 {
		t.Errorf("reported %d outcomes for orphan requests, want 0", len(reporter.Reports))
	}
}

func TestHTTPReporter_DeliversOnFirstAttempt(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Method != http.MethodPut {
			t.Errorf("callback method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/payments/BK-2001/status" {
			t.Errorf("callback path = %s, want /payments/BK-2001/status", r.URL.Path)
		}
		var report broker.SettlementReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			t.Errorf("failed to decode callback body: %v", err)
		} else if report.InvoiceNumber != "BK-2001" || !report.Result {
			t.Errorf("callback body = %+v", report)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	deadLetter := NewMockPublisher()
	reporter := worker.NewHTTPReporter(server.URL, 3, time.Millisecond, deadLetter)

	report := broker.SettlementReport{
		CorrelationID: "corr-1",
		InvoiceNumber: "BK-2001",
		Email:         "alice@example.com",
		Result:        true,
	}
	if err := reporter.Report(context.Background(), report); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("gateway hit %d times, want 1", got)
	}
	if len(deadLetter.Published) != 0 {
		t.Errorf("dead-lettered %d reports on success, want 0", len(deadLetter.Published))
	}
}

func TestHTTPReporter_RetriesThenDeadLetters(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	deadLetter := NewMockPublisher()
	reporter := worker.NewHTTPReporter(server.URL, 2, time.Millisecond, deadLetter)

	report := broker.SettlementReport{
		CorrelationID: "corr-2",
		InvoiceNumber: "BK-2002",
		Email:         "alice@example.com",
		Result:        false,
	}
	err := reporter.Report(context.Background(), report)
	if !errors.Is(err, worker.ErrCallbackDeliveryFailure) {
		t.Fatalf("Report() error = %v, want ErrCallbackDeliveryFailure", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("gateway hit %d times, want 2 attempts", got)
	}

	dead := deadLetter.PublishedTo(broker.TopicSettlementDeadLetter)
	if len(dead) != 1 {
		t.Fatalf("dead-lettered %d reports, want 1", len(dead))
	}
	if got, ok := dead[0].Payload.(broker.SettlementReport); !ok || got.CorrelationID != "corr-2" {
		t.Errorf("dead-lettered payload = %+v, want the original report", dead[0].Payload)
	}
}

func TestHTTPReporter_RetryRecovers(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reporter := worker.NewHTTPReporter(server.URL, 3, time.Millisecond, nil)

	report := broker.SettlementReport{CorrelationID: "corr-3", InvoiceNumber: "BK-2003", Result: true}
	if err := reporter.Report(context.Background(), report); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("gateway hit %d times, want 2", got)
	}
}
