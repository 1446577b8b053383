package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"cinepay/internal/broker"
)

// ErrCallbackDeliveryFailure is returned when a settlement report could not
// be delivered to the gateway after exhausting retries.
var ErrCallbackDeliveryFailure = errors.New("settlement callback delivery failed")

// Reporter delivers a settlement report to the gateway.
type Reporter interface {
	Report(ctx context.Context, report broker.SettlementReport) error
}

// HTTPReporter delivers settlement reports over the gateway's callback
// endpoint with bounded retries and exponential backoff. After exhaustion
// the report is published to the dead-letter topic so the outcome is never
// silently lost.
type HTTPReporter struct {
	client      *http.Client
	gatewayURL  string
	maxAttempts int
	baseBackoff time.Duration
	deadLetter  broker.Publisher
}

// NewHTTPReporter creates a reporter against the gateway base URL. The
// dead-letter publisher is optional.
func NewHTTPReporter(gatewayURL string, maxAttempts int, baseBackoff time.Duration, deadLetter broker.Publisher) *HTTPReporter {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseBackoff <= 0 {
		baseBackoff = 500 * time.Millisecond
	}
	return &HTTPReporter{
		client:      &http.Client{Timeout: 5 * time.Second},
		gatewayURL:  gatewayURL,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		deadLetter:  deadLetter,
	}
}

// Report delivers the settlement report, retrying transient failures.
func (r *HTTPReporter) Report(ctx context.Context, report broker.SettlementReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/payments/%s/status", r.gatewayURL, report.InvoiceNumber)

	var lastErr error
	backoff := r.baseBackoff
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = r.send(ctx, url, body)
		if lastErr == nil {
			return nil
		}
		log.Printf("settlement callback for %s failed (attempt %d/%d): %v",
			report.InvoiceNumber, attempt, r.maxAttempts, lastErr)

		if attempt == r.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.deadLetterReport(ctx, report)
	return fmt.Errorf("%w: %v", ErrCallbackDeliveryFailure, lastErr)
}

func (r *HTTPReporter) send(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}

func (r *HTTPReporter) deadLetterReport(ctx context.Context, report broker.SettlementReport) {
	if r.deadLetter == nil {
		return
	}
	if err := r.deadLetter.Publish(ctx, broker.TopicSettlementDeadLetter, report); err != nil {
		log.Printf("failed to dead-letter settlement report %s for %s: %v",
			report.CorrelationID, report.InvoiceNumber, err)
		return
	}
	log.Printf("settlement report %s for %s dead-lettered", report.CorrelationID, report.InvoiceNumber)
}
