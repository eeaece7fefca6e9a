package repository

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/domain/model"
)

// MemStore is a mutex-guarded in-memory Store. It is the default backend and
// the substrate for tests; it honors the same uniqueness and cascade semantics
// as the Postgres store.
type MemStore struct {
	mu           sync.RWMutex
	nextID       int64
	products     map[int64]model.Product
	byURL        map[string]int64
	observations map[int64][]model.Observation
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		nextID:       1,
		products:     make(map[int64]model.Product),
		byURL:        make(map[string]int64),
		observations: make(map[int64][]model.Observation),
	}
}

// AddProduct registers a product, enforcing canonical URL uniqueness.
func (s *MemStore) AddProduct(ctx context.Context, url string, target decimal.Decimal) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byURL[url]; exists {
		return model.Product{}, ErrDuplicateURL
	}

	p := model.Product{
		ID:          s.nextID,
		URL:         url,
		TargetPrice: target,
	}
	s.nextID++
	s.products[p.ID] = p
	s.byURL[url] = p.ID
	return p, nil
}

// GetProduct returns a product by id.
func (s *MemStore) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return p, nil
}

// ListProducts returns every tracked product ordered by id.
func (s *MemStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, 0, len(s.products))
	for id := int64(1); id < s.nextID; id++ {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeleteProduct removes a product and all of its observations.
func (s *MemStore) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	delete(s.byURL, p.URL)
	delete(s.observations, id)
	return nil
}

// UpdateTitle backfills the product title.
func (s *MemStore) UpdateTitle(ctx context.Context, id int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Title = title
	s.products[id] = p
	return nil
}

// AppendObservation appends one reading; the in-memory log preserves insertion order.
func (s *MemStore) AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	s.observations[productID] = append(s.observations[productID], model.Observation{
		ProductID: productID,
		Price:     price,
		At:        at.UTC(),
	})
	return nil
}

// ListObservations returns the product's readings in insertion order.
func (s *MemStore) ListObservations(ctx context.Context, productID int64) ([]model.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obs := s.observations[productID]
	out := make([]model.Observation, len(obs))
	copy(out, obs)
	return out, nil
}

// LatestPrice returns the most recently appended price.
func (s *MemStore) LatestPrice(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obs := s.observations[productID]
	if len(obs) == 0 {
		return decimal.Decimal{}, false, nil
	}
	return obs[len(obs)-1].Price, true, nil
}
