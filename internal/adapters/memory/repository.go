package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

// ProductRepository is the volatile backend: one owned, ordered slice per
// instance, destroyed with the process. It is the terminal fallback and
// must never fail.
type ProductRepository struct {
	mu       sync.Mutex
	products []*domain.Product
}

func NewProductRepository() port.ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) Add(_ context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(product.ID) >= 0 {
		return serviceerrors.NewDuplicateKeyError(fmt.Sprintf("product with id %s already exists", product.ID))
	}
	r.products = append(r.products, product.Clone())
	return nil
}

func (r *ProductRepository) GetAll(context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products := make([]*domain.Product, len(r.products))
	for i, p := range r.products {
		products[i] = p.Clone()
	}
	return products, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id domain.ID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		return r.products[i].Clone(), nil
	}
	return nil, nil
}

func (r *ProductRepository) Remove(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", id))
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

// Update replaces the matching slot in place, preserving the product's
// insertion-order position.
func (r *ProductRepository) Update(_ context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", product.ID))
	}
	r.products[i] = product.Clone()
	return nil
}

func (r *ProductRepository) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products), nil
}

func (r *ProductRepository) HealthCheck(context.Context) error {
	return nil
}

// indexOf assumes the caller holds the mutex.
func (r *ProductRepository) indexOf(id domain.ID) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
