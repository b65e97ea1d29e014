package repository

import (
	"context"
	"fmt"

	"github.com/rafaelleal24/shoplist/internal/adapters/mongo/document"
	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ProductRepository is the document backend. The product id doubles as
// the mongo `_id`, so Add needs no existence check: the primary index
// rejects duplicates atomically.
type ProductRepository struct {
	*BaseRepository[document.ProductDocument]
	client *mongo.Client
}

func NewProductRepository(client *mongo.Client, db *mongo.Database) port.ProductRepository {
	return &ProductRepository{
		BaseRepository: NewBaseRepository[document.ProductDocument](db, "products"),
		client:         client,
	}
}

func (r *ProductRepository) Add(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	doc := document.ToProductDocument(product)
	if err := r.Create(ctx, doc); err != nil {
		if serviceerrors.IsOfKind(err, serviceerrors.KindDuplicateKey) {
			return serviceerrors.NewDuplicateKeyError(fmt.Sprintf("product with id %s already exists", product.ID))
		}
		return err
	}
	return nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	docs, err := r.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, len(docs))
	for i, doc := range docs {
		products[i] = doc.ToDomain()
	}

	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	doc, err := r.FindByID(ctx, string(id))
	if err != nil {
		if serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return doc.ToDomain(), nil
}

func (r *ProductRepository) Remove(ctx context.Context, id domain.ID) error {
	if err := r.DeleteByID(ctx, string(id)); err != nil {
		if serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			return serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", id))
		}
		return err
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	err := r.BaseRepository.Update(ctx, string(product.ID), bson.M{
		"name":       product.Name,
		"quantity":   product.Quantity,
		"purchased":  product.Purchased,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		if serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			return serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", product.ID))
		}
		return err
	}
	return nil
}

func (r *ProductRepository) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return serviceerrors.NewStorageUnavailableError("mongodb health check", err)
	}
	return nil
}
