package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cinepay/internal/domain"
	"cinepay/internal/repository"
	"cinepay/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
// Exactly one of booking/user must be present.
type CreatePaymentRequest struct {
	InvoiceNumber string          `json:"invoice_number"`
	TotalPrice    float64         `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	Booking       *domain.Booking `json:"booking,omitempty"`
	User          *domain.Account `json:"user,omitempty"`
}

// CreatePayment handles POST /payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), service.CreatePaymentRequest{
		InvoiceNumber: req.InvoiceNumber,
		TotalPrice:    req.TotalPrice,
		PaymentMethod: req.PaymentMethod,
		Booking:       req.Booking,
		User:          req.User,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetAll handles GET /payments
func (h *PaymentHandler) GetAll(c *gin.Context) {
	payments, err := h.paymentService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, ResultResponse{Result: toPaymentResponses(payments)})
}

// GetOngoing handles GET /payments/ongoing/:email
func (h *PaymentHandler) GetOngoing(c *gin.Context) {
	payments, err := h.paymentService.GetOngoing(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, ResultResponse{Result: toPaymentResponses(payments)})
}

// GetHistory handles GET /payments/history/:email
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	payments, err := h.paymentService.GetHistory(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, ResultResponse{Result: toPaymentResponses(payments)})
}

// ValidatePaymentRequest is the HTTP request body for requesting validation.
type ValidatePaymentRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

// RequestValidation handles POST /payments/validate
func (h *PaymentHandler) RequestValidation(c *gin.Context) {
	var req ValidatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.paymentService.RequestValidation(c.Request.Context(), req.InvoiceNumber); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("validation request for invoice %s sent", req.InvoiceNumber),
	})
}

// UpdateStatusRequest is the settlement callback body sent by the worker.
type UpdateStatusRequest struct {
	CorrelationID string `json:"correlation_id"`
	InvoiceNumber string `json:"invoice_number"`
	Email         string `json:"email"`
	Result        bool   `json:"result"`
}

// UpdateStatus handles PUT /payments/:invoice/status, the settlement callback.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// The path parameter is authoritative; the body repeats it for tracing.
	invoiceNumber := c.Param("invoice")

	if err := h.paymentService.ReportSettlement(c.Request.Context(), invoiceNumber, req.Email, req.Result); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("settlement for invoice %s applied", invoiceNumber),
	})
}

// ApplyPromoRequest is the HTTP request body for attaching a promo.
type ApplyPromoRequest struct {
	PromoID int `json:"promo_id"`
}

// ApplyPromo handles POST /payments/:invoice/apply-promo
func (h *PaymentHandler) ApplyPromo(c *gin.Context) {
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.paymentService.ApplyPromo(c.Request.Context(), c.Param("invoice"), req.PromoID)
	if err != nil {
		// Unknown invoice or promo is a client mistake on this endpoint.
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemovePromo handles POST /payments/:invoice/remove-promo
func (h *PaymentHandler) RemovePromo(c *gin.Context) {
	if err := h.paymentService.RemovePromo(c.Request.Context(), c.Param("invoice")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
