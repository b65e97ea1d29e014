package port

import (
	"context"

	"github.com/rafaelleal24/shoplist/internal/core/domain"
)

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

// ProductRepository is the persistence contract every backend satisfies
// with identical error semantics:
//
//   - Add fails with KindDuplicateKey when the id is already present.
//   - GetAll never fails on emptiness and keeps a stable order within a
//     session.
//   - GetByID returns (nil, nil) when the id is absent; absence is a
//     valid result, not an error.
//   - Remove and Update fail with KindNotFound when the id is absent;
//     Update fails with KindValidation when the resulting fields break an
//     invariant. The id itself is immutable.
type ProductRepository interface {
	Add(ctx context.Context, product *domain.Product) error
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id domain.ID) (*domain.Product, error)
	Remove(ctx context.Context, id domain.ID) error
	Update(ctx context.Context, product *domain.Product) error
	Count(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
}
