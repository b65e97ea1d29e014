package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rafaelleal24/shoplist/internal/adapters/jsonfile"
	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

func mustProduct(t *testing.T, id domain.ID, name string, quantity int) *domain.Product {
	t.Helper()
	product, err := domain.NewProductWithID(id, name, quantity)
	if err != nil {
		t.Fatalf("setup: new product failed: %v", err)
	}
	return product
}

func TestNewProductRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing directories and file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "products.json")

		_, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected file to exist: %v", err)
		}
		if string(data) != "[]" {
			t.Fatalf("expected empty array, got %q", string(data))
		}
	})

	t.Run("loads an existing dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")
		seed := `[{"id":"id-1","name":"Milk","quantity":2,"purchased":true}]`
		if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
			t.Fatalf("seed write failed: %v", err)
		}

		repo, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.GetByID(ctx, "id-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got == nil {
			t.Fatal("expected seeded product")
		}
		if got.Name != "Milk" || got.Quantity != 2 || !got.Purchased {
			t.Fatalf("unexpected product: %+v", got)
		}
	})

	t.Run("corrupt file degrades to an empty dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatalf("seed write failed: %v", err)
		}

		repo, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		products, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(products) != 0 {
			t.Fatalf("expected empty dataset, got %d products", len(products))
		}

		// the corrupt file is left on disk until the first write
		data, _ := os.ReadFile(path)
		if string(data) != "{not json" {
			t.Fatalf("corrupt file should be untouched before a write, got %q", string(data))
		}

		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		data, _ = os.ReadFile(path)
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			t.Fatalf("file should be valid JSON after a write: %v", err)
		}
	})
}

func TestProductRepository_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("dataset survives reopening the repository", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")

		repo, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 2)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := repo.Add(ctx, mustProduct(t, "id-2", "Bread", 1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		reopened, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		products, err := reopened.GetAll(ctx)
		if err != nil {
			t.Fatalf("get all failed: %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products after reopen, got %d", len(products))
		}
		if products[0].ID != "id-1" || products[1].ID != "id-2" {
			t.Fatalf("expected file order preserved, got %s, %s", products[0].ID, products[1].ID)
		}
	})

	t.Run("file uses the documented record shape", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")

		repo, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 2)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		for _, key := range []string{"id", "name", "quantity", "purchased"} {
			if _, ok := records[0][key]; !ok {
				t.Fatalf("record missing key %q: %v", key, records[0])
			}
		}
		if len(records[0]) != 4 {
			t.Fatalf("record should carry exactly the four documented keys, got %v", records[0])
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "products.json")

		repo, err := jsonfile.NewProductRepository(ctx, path)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if err := repo.Add(ctx, mustProduct(t, "id-1", "Milk", 1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := repo.Remove(ctx, "id-1"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read dir failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "products.json" {
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name()
			}
			t.Fatalf("expected only products.json in %s, got %v", dir, names)
		}
	})
}

func TestProductRepository_Contract(t *testing.T) {
	ctx := context.Background()

	newRepo := func(t *testing.T) (domain.ID, *domain.Product, port.ProductRepository) {
		t.Helper()
		repo, err := jsonfile.NewProductRepository(ctx, filepath.Join(t.TempDir(), "products.json"))
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		product := mustProduct(t, "id-1", "Milk", 1)
		return product.ID, product, repo
	}

	t.Run("duplicate add is rejected", func(t *testing.T) {
		_, product, repo := newRepo(t)
		if err := repo.Add(ctx, product); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		err := repo.Add(ctx, mustProduct(t, product.ID, "Bread", 1))
		if !serviceerrors.IsOfKind(err, serviceerrors.KindDuplicateKey) {
			t.Fatalf("expected duplicate key error, got %v", err)
		}
	})

	t.Run("missing product reads as nil without error", func(t *testing.T) {
		_, _, repo := newRepo(t)
		got, err := repo.GetByID(ctx, "missing")
		if err != nil || got != nil {
			t.Fatalf("expected (nil, nil), got (%+v, %v)", got, err)
		}
	})

	t.Run("remove of a missing product is not found", func(t *testing.T) {
		_, _, repo := newRepo(t)
		err := repo.Remove(ctx, "missing")
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected not found error, got %v", err)
		}
	})

	t.Run("update of a missing product is not found", func(t *testing.T) {
		_, _, repo := newRepo(t)
		err := repo.Update(ctx, mustProduct(t, "missing", "Milk", 1))
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected not found error, got %v", err)
		}
	})

	t.Run("count tracks mutations", func(t *testing.T) {
		id, product, repo := newRepo(t)
		if err := repo.Add(ctx, product); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		count, err := repo.Count(ctx)
		if err != nil || count != 1 {
			t.Fatalf("expected (1, nil), got (%d, %v)", count, err)
		}
		if err := repo.Remove(ctx, id); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		count, err = repo.Count(ctx)
		if err != nil || count != 0 {
			t.Fatalf("expected (0, nil), got (%d, %v)", count, err)
		}
	})
}

func TestProductRepository_HealthCheck(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "products.json")

	repo, err := jsonfile.NewProductRepository(ctx, path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := repo.HealthCheck(ctx); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove file failed: %v", err)
	}

	err = repo.HealthCheck(ctx)
	if !serviceerrors.IsOfKind(err, serviceerrors.KindStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}
