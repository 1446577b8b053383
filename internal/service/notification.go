package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// NotificationService reaches the booking and account services over HTTP.
// Calls are fire-and-forget: the settlement outcome is already recorded when
// they run, so failures are reported to the caller for logging only.
type NotificationService struct {
	client     *http.Client
	bookingURL string
	accountURL string
}

// NewNotificationService creates a notifier for the given collaborator base
// URLs. An empty URL disables the corresponding calls.
func NewNotificationService(bookingURL, accountURL string) *NotificationService {
	return &NotificationService{
		client:     &http.Client{Timeout: 5 * time.Second},
		bookingURL: bookingURL,
		accountURL: accountURL,
	}
}

// ConfirmBooking tells the booking service the payment went through.
func (s *NotificationService) ConfirmBooking(ctx context.Context, invoiceNumber, email string) error {
	if s.bookingURL == "" {
		log.Printf("booking service not configured, skipping confirmation for %s", invoiceNumber)
		return nil
	}
	return s.post(ctx, fmt.Sprintf("%s/confirm/%s", s.bookingURL, invoiceNumber))
}

// CancelBooking tells the booking service to cancel the booking.
func (s *NotificationService) CancelBooking(ctx context.Context, invoiceNumber, email string) error {
	if s.bookingURL == "" {
		log.Printf("booking service not configured, skipping cancellation for %s", invoiceNumber)
		return nil
	}
	return s.post(ctx, fmt.Sprintf("%s/cancel/%s", s.bookingURL, invoiceNumber))
}

// ActivateMembership asks the account service to activate the membership.
func (s *NotificationService) ActivateMembership(ctx context.Context, email string, active bool) error {
	if s.accountURL == "" {
		log.Printf("account service not configured, skipping membership activation for %s", email)
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"email":  email,
		"status": active,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.accountURL+"/update-status-membership", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *NotificationService) post(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *NotificationService) do(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned %d", req.Method, req.URL, resp.StatusCode)
	}
	return nil
}
