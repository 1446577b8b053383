package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cinepay/internal/domain"
	"cinepay/internal/repository"
	"cinepay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ResultResponse wraps list results the way the API serializes them.
type ResultResponse struct {
	Result any `json:"result"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// PaymentResponse is the serialized form of a payment.
type PaymentResponse struct {
	InvoiceNumber string              `json:"invoice_number"`
	Kind          string              `json:"kind"`
	TotalPrice    float64             `json:"total_price"`
	PaymentMethod domain.MethodFields `json:"payment_method"`
	Status        string              `json:"status"`
	Booking       *domain.Booking     `json:"booking,omitempty"`
	User          *domain.Account     `json:"user,omitempty"`
	Promo         *domain.Promo       `json:"promo,omitempty"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		InvoiceNumber: p.InvoiceNumber,
		Kind:          string(p.Kind),
		TotalPrice:    p.TotalPrice,
		PaymentMethod: p.Method.Fields(),
		Status:        string(p.Status),
		Booking:       p.Booking,
		User:          p.User,
		Promo:         p.Promo,
	}
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps domain/service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Client-input errors - Bad Request
	case errors.Is(err, repository.ErrDuplicateInvoice),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, domain.ErrUnroutablePayment),
		errors.Is(err, domain.ErrPromoNotApplicable),
		errors.Is(err, service.ErrInvalidInvoiceNumber),
		errors.Is(err, service.ErrInvalidTotalPrice),
		errors.Is(err, service.ErrInvalidPromoName),
		errors.Is(err, service.ErrInvalidDiscount):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict

	// Infrastructure unavailable
	case errors.Is(err, service.ErrBrokerUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
