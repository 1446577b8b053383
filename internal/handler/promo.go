package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cinepay/internal/service"
)

// PromoHandler handles HTTP requests for promos.
type PromoHandler struct {
	promoService *service.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(promoService *service.PromoService) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

// CreatePromoRequest is the HTTP request body for creating a promo.
type CreatePromoRequest struct {
	Name        string  `json:"name"`
	Discount    float64 `json:"discount"`
	MaxDiscount float64 `json:"max_discount"`
	Info        string  `json:"info"`
	MinPurchase float64 `json:"min_purchase"`
}

// CreatePromo handles POST /promos
func (h *PromoHandler) CreatePromo(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	promo, err := h.promoService.Create(c.Request.Context(), service.CreatePromoRequest{
		Name:        req.Name,
		Discount:    req.Discount,
		MaxDiscount: req.MaxDiscount,
		Info:        req.Info,
		MinPurchase: req.MinPurchase,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, promo)
}

// GetAll handles GET /promos
func (h *PromoHandler) GetAll(c *gin.Context) {
	promos, err := h.promoService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, ResultResponse{Result: promos})
}

// GetPromo handles GET /promos/:id
func (h *PromoHandler) GetPromo(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid promo id"})
		return
	}

	promo, err := h.promoService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, promo)
}

// DeletePromo handles DELETE /promos/:id
func (h *PromoHandler) DeletePromo(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid promo id"})
		return
	}

	if err := h.promoService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
