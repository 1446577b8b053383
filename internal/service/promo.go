package service

import (
	"context"

	"cinepay/internal/domain"
	"cinepay/internal/repository"
)

// PromoService manages the discount rules applicable to booking payments.
type PromoService struct {
	store repository.PromoStore
}

// NewPromoService creates a new PromoService.
func NewPromoService(store repository.PromoStore) *PromoService {
	return &PromoService{store: store}
}

// CreatePromoRequest contains the parameters for creating a promo. Info and
// MinPurchase are optional and default to "" and 0.
type CreatePromoRequest struct {
	Name        string
	Discount    float64
	MaxDiscount float64
	Info        string
	MinPurchase float64
}

// Create validates the request and stores a new promo; the store assigns the id.
func (s *PromoService) Create(ctx context.Context, req CreatePromoRequest) (*domain.Promo, error) {
	if req.Name == "" {
		return nil, ErrInvalidPromoName
	}
	if req.Discount < 0 || req.Discount > 1 {
		return nil, ErrInvalidDiscount
	}

	promo := &domain.Promo{
		Name:        req.Name,
		Discount:    req.Discount,
		MaxDiscount: req.MaxDiscount,
		Info:        req.Info,
		MinPurchase: req.MinPurchase,
	}
	if err := s.store.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Get retrieves a promo by id.
func (s *PromoService) Get(ctx context.Context, id int) (*domain.Promo, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a promo by id.
func (s *PromoService) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

// GetAll lists every promo.
func (s *PromoService) GetAll(ctx context.Context) ([]*domain.Promo, error) {
	return s.store.ListAll(ctx)
}
