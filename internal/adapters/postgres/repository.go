package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

const uniqueViolation = "23505"

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS products (
	id         VARCHAR(36) PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	purchased  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_purchased ON products(purchased);
`

// ProductRepository is the relational backend. Every operation borrows a
// connection from the pool for its duration only; duplicate and absence
// detection is driven by the database itself (unique constraint, affected
// row counts) rather than a read-before-write.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository initializes the schema (idempotent) and returns
// the repository. A schema failure is fatal for this backend but the
// fallback strategy treats it as a signal to move on.
func NewProductRepository(ctx context.Context, pool *pgxpool.Pool) (port.ProductRepository, error) {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return nil, serviceerrors.NewSchemaError("failed to initialize products schema", err)
	}
	return &ProductRepository{pool: pool}, nil
}

func (r *ProductRepository) Add(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, name, quantity, purchased) VALUES ($1, $2, $3, $4)`,
		string(product.ID), product.Name, product.Quantity, product.Purchased,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return serviceerrors.NewDuplicateKeyError(fmt.Sprintf("product with id %s already exists", product.ID))
		}
		return serviceerrors.NewStorageUnavailableError("insert product", err)
	}
	return nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, quantity, purchased, created_at, updated_at
		 FROM products
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, serviceerrors.NewStorageUnavailableError("query products", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, serviceerrors.NewStorageUnavailableError("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, serviceerrors.NewStorageUnavailableError("iterate products", err)
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, quantity, purchased, created_at, updated_at
		 FROM products
		 WHERE id = $1`,
		string(id),
	)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, serviceerrors.NewStorageUnavailableError("query product by id", err)
	}
	return p, nil
}

func (r *ProductRepository) Remove(ctx context.Context, id domain.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, string(id))
	if err != nil {
		return serviceerrors.NewStorageUnavailableError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", id))
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, quantity = $3, purchased = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		string(product.ID), product.Name, product.Quantity, product.Purchased,
	)
	if err != nil {
		return serviceerrors.NewStorageUnavailableError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return serviceerrors.NewNotFoundError(fmt.Sprintf("product with id %s does not exist", product.ID))
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, serviceerrors.NewStorageUnavailableError("count products", err)
	}
	return count, nil
}

// HealthCheck is the trivial round trip the fallback strategy probes with.
func (r *ProductRepository) HealthCheck(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return serviceerrors.NewStorageUnavailableError("postgres health check", err)
	}
	return nil
}

// GetByPurchaseStatus returns products filtered on the purchased flag,
// most recently created first.
func (r *ProductRepository) GetByPurchaseStatus(ctx context.Context, purchased bool) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, quantity, purchased, created_at, updated_at
		 FROM products
		 WHERE purchased = $1
		 ORDER BY created_at DESC`,
		purchased,
	)
	if err != nil {
		return nil, serviceerrors.NewStorageUnavailableError("query products by status", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, serviceerrors.NewStorageUnavailableError("scan product", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var id string
	if err := row.Scan(&id, &p.Name, &p.Quantity, &p.Purchased, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = domain.ID(id)
	return &p, nil
}
