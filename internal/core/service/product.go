package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/dto"
	"github.com/rafaelleal24/shoplist/internal/core/logger"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

const productCacheTTL = 15 * time.Minute

// ProductService drives the shopping list. The cache and broker are
// optional collaborators: a desktop-grade deployment runs without redis or
// rabbitmq and the service degrades to repository-only operation.
type ProductService struct {
	repository   port.ProductRepository
	productCache port.CachePort[domain.Product]
	broker       port.BrokerPort
	normalizer   *NameNormalizer
}

func NewProductService(
	repository port.ProductRepository,
	productCache port.CachePort[domain.Product],
	broker port.BrokerPort,
	normalizer *NameNormalizer,
) *ProductService {
	return &ProductService{
		repository:   repository,
		productCache: productCache,
		broker:       broker,
		normalizer:   normalizer,
	}
}

func (s *ProductService) cacheKey(id domain.ID) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *ProductService) AddProduct(ctx context.Context, request *dto.CreateProductRequest) (*domain.Product, error) {
	name := s.normalizeName(ctx, request.Name)

	var (
		product *domain.Product
		err     error
	)
	if request.ID != "" {
		product, err = domain.NewProductWithID(domain.ID(request.ID), name, request.Quantity)
	} else {
		product, err = domain.NewProduct(name, request.Quantity)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repository.Add(ctx, product); err != nil {
		logger.Error(ctx, "product: add failed", err, map[string]any{
			"product_id": product.ID,
			"name":       product.Name,
			"quantity":   product.Quantity,
		})
		return nil, err
	}

	s.cacheSet(ctx, product)
	s.publish(ctx, domain.NewProductEvent(domain.EventProductCreated, product))

	logger.Info(ctx, "Product added", map[string]any{"product_id": product.ID})
	return product, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]*domain.Product, error) {
	return s.repository.GetAll(ctx)
}

// GetByID resolves through the cache when one is wired. Absence surfaces
// as a KindNotFound error at this layer; the repository sentinel stays
// inside the persistence boundary.
func (s *ProductService) GetByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	if s.productCache != nil {
		cached, err := s.productCache.Get(ctx, s.cacheKey(id))
		if err != nil {
			logger.Error(ctx, "cache: get product failed", err, map[string]any{"product_id": id})
		}
		if cached != nil {
			return cached, nil
		}
	}

	product, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", id))
	}

	s.cacheSet(ctx, product)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id domain.ID, request *dto.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Apply(&domain.Product{
		Name:      s.normalizeName(ctx, request.Name),
		Quantity:  request.Quantity,
		Purchased: request.Purchased,
	}); err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, product); err != nil {
		logger.Error(ctx, "product: update failed", err, map[string]any{"product_id": id})
		return nil, err
	}

	s.cacheSet(ctx, product)
	s.publish(ctx, domain.NewProductEvent(domain.EventProductUpdated, product))

	logger.Info(ctx, "Product updated", map[string]any{"product_id": id})
	return product, nil
}

func (s *ProductService) RemoveProduct(ctx context.Context, id domain.ID) error {
	if err := s.repository.Remove(ctx, id); err != nil {
		logger.Error(ctx, "product: remove failed", err, map[string]any{"product_id": id})
		return err
	}

	s.cacheDel(ctx, id)
	s.publish(ctx, &domain.ProductEvent{
		Name:       domain.EventProductRemoved,
		ProductID:  id,
		OccurredAt: time.Now(),
	})

	logger.Info(ctx, "Product removed", map[string]any{"product_id": id})
	return nil
}

// MarkPurchased flips the purchased flag, keeping name and quantity.
func (s *ProductService) MarkPurchased(ctx context.Context, id domain.ID, purchased bool) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Purchased == purchased {
		return product, nil
	}

	if err := product.Apply(&domain.Product{
		Name:      product.Name,
		Quantity:  product.Quantity,
		Purchased: purchased,
	}); err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, product); err != nil {
		logger.Error(ctx, "product: mark purchased failed", err, map[string]any{"product_id": id})
		return nil, err
	}

	s.cacheSet(ctx, product)
	s.publish(ctx, domain.NewProductEvent(domain.EventProductPurchased, product))

	logger.Info(ctx, "Product purchase status changed", map[string]any{
		"product_id": id,
		"status":     product.Status(),
	})
	return product, nil
}

func (s *ProductService) Count(ctx context.Context) (int, error) {
	return s.repository.Count(ctx)
}

func (s *ProductService) HealthCheck(ctx context.Context) error {
	return s.repository.HealthCheck(ctx)
}

func (s *ProductService) normalizeName(ctx context.Context, name string) string {
	if s.normalizer == nil {
		return name
	}
	result := s.normalizer.Normalize(name)
	if result.Improved {
		logger.Info(ctx, "Product name normalized", map[string]any{
			"original":   result.Original,
			"normalized": result.Normalized,
			"changes":    fmt.Sprintf("%v", result.Changes),
		})
	}
	return result.Normalized
}

func (s *ProductService) cacheSet(ctx context.Context, product *domain.Product) {
	if s.productCache == nil {
		return
	}
	if err := s.productCache.Set(ctx, s.cacheKey(product.ID), product, productCacheTTL); err != nil {
		logger.Error(ctx, "cache: set product failed", err, map[string]any{"product_id": product.ID})
	}
}

func (s *ProductService) cacheDel(ctx context.Context, id domain.ID) {
	if s.productCache == nil {
		return
	}
	if err := s.productCache.Del(ctx, s.cacheKey(id)); err != nil {
		logger.Error(ctx, "cache: delete product failed", err, map[string]any{"product_id": id})
	}
}

// publish is best effort: a broker outage never fails the write that
// already happened.
func (s *ProductService) publish(ctx context.Context, event domain.Event) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		logger.Error(ctx, "broker: publish failed", err, map[string]any{
			"event_name": event.GetName(),
		})
	}
}
