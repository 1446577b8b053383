package repository

import (
	"context"

	"cinepay/internal/domain"
)

// PromoStore defines the persistence operations for promos. Implementations
// own promo id assignment.
type PromoStore interface {
	// Create persists a new promo and assigns it the next sequential id.
	Create(ctx context.Context, promo *domain.Promo) error

	// Get retrieves a promo by id.
	Get(ctx context.Context, id int) (*domain.Promo, error)

	// Delete removes a promo by id. Fails with ErrNotFound if absent.
	Delete(ctx context.Context, id int) error

	// ListAll returns every promo in the store.
	ListAll(ctx context.Context) ([]*domain.Promo, error)
}
