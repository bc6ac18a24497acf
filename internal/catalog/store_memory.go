package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

type MemStore struct {
	mu       sync.RWMutex
	products []Product
	validate *validator.Validate
}

// NewMemStore starts with a copy of seed.
func NewMemStore(seed ...Product) *MemStore {
	return &MemStore{
		products: slices.Clone(seed),
		validate: validator.New(),
	}
}

// NewStore returns a memory store holding the sample catalog.
func NewStore() *MemStore {
	return NewMemStore(SeedProducts()...)
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

func (s *MemStore) Insert(ctx context.Context, d Draft) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := d.product(strconv.Itoa(s.maxID() + 1))
	if err := s.validate.Struct(p); err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}

	s.products = append(s.products, p)
	return p, nil
}

func (s *MemStore) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrProductNotFound
	}

	p := patch.Apply(s.products[i])
	if err := s.validate.Struct(p); err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	s.products[i] = p
	return p, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}

	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// indexOf must be called with s.mu held.
func (s *MemStore) indexOf(id string) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

// maxID must be called with s.mu held. Ids that are not integers are skipped.
func (s *MemStore) maxID() int {
	highest := 0
	for _, p := range s.products {
		n, err := strconv.Atoi(p.ID)
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest
}
