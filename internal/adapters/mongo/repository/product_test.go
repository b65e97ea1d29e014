package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/rafaelleal24/shoplist/internal/adapters/mongo/repository"
	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

func newProductRepo(t *testing.T) port.ProductRepository {
	t.Helper()
	if err := testDB.Collection("products").Drop(context.Background()); err != nil {
		t.Fatalf("failed to drop collection: %v", err)
	}
	return repository.NewProductRepository(testClient, testDB)
}

func mustProduct(t *testing.T, id domain.ID, name string, quantity int) *domain.Product {
	t.Helper()
	product, err := domain.NewProductWithID(id, name, quantity)
	if err != nil {
		t.Fatalf("setup: new product failed: %v", err)
	}
	return product
}

func TestProductRepository_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and reads back a product", func(t *testing.T) {
		repo := newProductRepo(t)

		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 2)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		got, err := repo.GetByID(ctx, "id-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected product, got nil")
		}
		if got.Name != "Milk" || got.Quantity != 2 || got.Purchased {
			t.Fatalf("unexpected product: %+v", got)
		}
	})

	t.Run("primary index rejects duplicate id", func(t *testing.T) {
		repo := newProductRepo(t)

		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 1)); err != nil {
			t.Fatalf("first add failed: %v", err)
		}
		err := repo.Add(ctx, mustProduct(t, "id-1", "Bread", 1))
		if !serviceerrors.IsOfKind(err, serviceerrors.KindDuplicateKey) {
			t.Fatalf("expected duplicate key error, got %v", err)
		}
	})

	t.Run("rejects an invalid product", func(t *testing.T) {
		repo := newProductRepo(t)

		err := repo.Add(ctx, &domain.Product{ID: "id-1", Name: "", Quantity: 1})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestProductRepository_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection returns empty slice", func(t *testing.T) {
		repo := newProductRepo(t)

		products, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("get all failed: %v", err)
		}
		if len(products) != 0 {
			t.Fatalf("expected 0 products, got %d", len(products))
		}
	})

	t.Run("returns newest first", func(t *testing.T) {
		repo := newProductRepo(t)

		for _, id := range []domain.ID{"id-1", "id-2", "id-3"} {
			if err := repo.Add(ctx, mustProduct(t, id, "Product "+string(id), 1)); err != nil {
				t.Fatalf("add failed: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		products, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("get all failed: %v", err)
		}
		want := []domain.ID{"id-3", "id-2", "id-1"}
		if len(products) != len(want) {
			t.Fatalf("expected %d products, got %d", len(want), len(products))
		}
		for i, id := range want {
			if products[i].ID != id {
				t.Fatalf("position %d: expected %s, got %s", i, id, products[i].ID)
			}
		}
	})
}

func TestProductRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newProductRepo(t)

	got, err := repo.GetByID(ctx, "missing")
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing product, got %+v", got)
	}
}

func TestProductRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the document", func(t *testing.T) {
		repo := newProductRepo(t)

		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		updated := mustProduct(t, "id-1", "Whole Milk", 3)
		updated.Purchased = true
		if err := repo.Update(ctx, updated); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		got, err := repo.GetByID(ctx, "id-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Name != "Whole Milk" || got.Quantity != 3 || !got.Purchased {
			t.Fatalf("unexpected product after update: %+v", got)
		}
	})

	t.Run("zero matches is not found", func(t *testing.T) {
		repo := newProductRepo(t)

		err := repo.Update(ctx, mustProduct(t, "missing", "Milk", 1))
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestProductRepository_Remove(t *testing.T) {
	ctx := context.Background()
	repo := newProductRepo(t)

	if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.Remove(ctx, "id-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "id-1")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) after removal, got (%+v, %v)", got, err)
	}

	err = repo.Remove(ctx, "id-1")
	if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
		t.Fatalf("second remove should be not found, got %v", err)
	}
}

func TestProductRepository_Count(t *testing.T) {
	ctx := context.Background()
	repo := newProductRepo(t)

	count, err := repo.Count(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, err)
	}

	if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	count, err = repo.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected (1, nil), got (%d, %v)", count, err)
	}
}

func TestProductRepository_HealthCheck(t *testing.T) {
	repo := newProductRepo(t)
	if err := repo.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}
