package memory

import (
	"context"
	"sync"

	"cinepay/internal/domain"
	"cinepay/internal/repository"
)

// PromoStore is an in-memory implementation of repository.PromoStore. Each
// instance owns its id counter, so separate stores never interfere.
type PromoStore struct {
	mu     sync.RWMutex
	nextID int
	promos map[int]*domain.Promo
}

// NewPromoStore creates an empty in-memory promo store. Ids start at 1.
func NewPromoStore() *PromoStore {
	return &PromoStore{
		nextID: 1,
		promos: make(map[int]*domain.Promo),
	}
}

// Create persists a new promo and assigns it the next sequential id.
func (s *PromoStore) Create(ctx context.Context, promo *domain.Promo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	promo.ID = s.nextID
	s.nextID++

	stored := *promo
	s.promos[promo.ID] = &stored
	return nil
}

// Get retrieves a promo by id.
func (s *PromoStore) Get(ctx context.Context, id int) (*domain.Promo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	promo, ok := s.promos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *promo
	return &found, nil
}

// Delete removes a promo by id.
func (s *PromoStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.promos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.promos, id)
	return nil
}

// ListAll returns every promo, ordered by id.
func (s *PromoStore) ListAll(ctx context.Context) ([]*domain.Promo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Promo, 0, len(s.promos))
	for id := 1; id < s.nextID; id++ {
		if promo, ok := s.promos[id]; ok {
			found := *promo
			result = append(result, &found)
		}
	}
	return result, nil
}
