// Package worker implements the settlement side of the pipeline: it
// materializes payments from creation messages, runs the payment-method
// validation on request, and reports outcomes back to the gateway.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"cinepay/internal/broker"
	"cinepay/internal/domain"
	"cinepay/internal/repository"
)

// Settler consumes the pipeline topics against its own payment store. The
// store is a working cache, not the system of record: creation messages are
// upserted (at-least-once tolerant) and validation requests for unknown
// invoices are dropped.
type Settler struct {
	store    repository.PaymentStore
	resolver *domain.MethodResolver
	reporter Reporter
}

// NewSettler creates a new Settler.
func NewSettler(store repository.PaymentStore, resolver *domain.MethodResolver, reporter Reporter) *Settler {
	return &Settler{
		store:    store,
		resolver: resolver,
		reporter: reporter,
	}
}

// HandleCreation materializes a PENDING payment from a creation message.
// Malformed or unresolvable payloads are logged and dropped; a poison
// message must never stop the consume loop.
func (s *Settler) HandleCreation(message []byte) {
	var msg broker.CreationMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("dropping malformed creation message: %v", err)
		return
	}

	method, err := s.resolver.Resolve(msg.InvoiceNumber, msg.PaymentMethod)
	if err != nil {
		log.Printf("dropping creation message for %s: %v", msg.InvoiceNumber, err)
		return
	}

	payment, err := domain.NewPayment(msg.InvoiceNumber, msg.TotalPrice, method, msg.Booking, msg.User)
	if err != nil {
		log.Printf("dropping creation message for %s: %v", msg.InvoiceNumber, err)
		return
	}
	payment.Promo = msg.Promo

	if err := s.store.Upsert(context.Background(), payment); err != nil {
		log.Printf("failed to store payment %s: %v", msg.InvoiceNumber, err)
		return
	}
	log.Printf("payment %s materialized in worker store", msg.InvoiceNumber)
}

// HandleValidation settles the requested payment: it runs the payment
// method's authorization check, drops the entry from the store and reports
// the outcome to the gateway.
func (s *Settler) HandleValidation(message []byte) {
	var msg broker.ValidationRequest
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("dropping malformed validation request: %v", err)
		return
	}

	ctx := context.Background()
	payment, err := s.store.Get(ctx, msg.InvoiceNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Refers to a payment this worker never saw.
			log.Printf("dropping validation request for unknown invoice %s", msg.InvoiceNumber)
			return
		}
		log.Printf("failed to load payment %s: %v", msg.InvoiceNumber, err)
		return
	}

	result := payment.Method.Validate()
	email := payment.OwnerEmail()

	if err := s.store.Remove(ctx, msg.InvoiceNumber); err != nil {
		log.Printf("failed to remove payment %s from worker store: %v", msg.InvoiceNumber, err)
	}

	report := broker.SettlementReport{
		CorrelationID: uuid.New().String(),
		InvoiceNumber: msg.InvoiceNumber,
		Email:         email,
		Result:        result,
	}
	if err := s.reporter.Report(ctx, report); err != nil {
		log.Printf("settlement outcome for %s (%t) not delivered: %v", msg.InvoiceNumber, result, err)
		return
	}
	log.Printf("settlement result (%t) for invoice %s reported to gateway", result, msg.InvoiceNumber)
}
