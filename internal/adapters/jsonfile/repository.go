package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/logger"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

// productRecord is the on-disk shape: a bare JSON array of these objects,
// no envelope, no version field.
type productRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Purchased bool   `json:"purchased"`
}

// ProductRepository is the durable single-file backend. The dataset is
// loaded eagerly at construction and served from memory; every mutation
// rewrites the whole document through a temp file + rename so the file
// never holds a partial record. External edits between loads are not
// picked up without re-instantiating the repository.
type ProductRepository struct {
	mu       sync.Mutex
	path     string
	products []*domain.Product
}

// NewProductRepository ensures the parent directory and file exist
// (writing an empty array when missing), then loads the dataset. An
// unparsable file degrades to an empty dataset: the file stays on disk
// untouched until the next successful write, and the failure is logged.
func NewProductRepository(ctx context.Context, path string) (port.ProductRepository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, serviceerrors.NewStorageUnavailableError(fmt.Sprintf("resolving %s", path), err)
	}

	r := &ProductRepository{path: abs}
	if err := r.ensureFileExists(); err != nil {
		return nil, err
	}
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ProductRepository) ensureFileExists() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("creating directory for %s", r.path), err)
	}
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("checking %s", r.path), err)
	}
	if err := os.WriteFile(r.path, []byte("[]"), 0o644); err != nil {
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("creating %s", r.path), err)
	}
	return nil
}

func (r *ProductRepository) load(ctx context.Context) error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("reading %s", r.path), err)
	}

	var records []productRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn(ctx, "Product file is not valid JSON, starting with empty dataset", map[string]any{
			"path":  r.path,
			"error": err.Error(),
		})
		r.products = nil
		return nil
	}

	now := time.Now()
	products := make([]*domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, &domain.Product{
			ID:        domain.ID(rec.ID),
			Name:      rec.Name,
			Quantity:  rec.Quantity,
			Purchased: rec.Purchased,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	r.products = products
	return nil
}

// save assumes the caller holds the mutex.
func (r *ProductRepository) save() error {
	records := make([]productRecord, len(r.products))
	for i, p := range r.products {
		records[i] = productRecord{
			ID:        string(p.ID),
			Name:      p.Name,
			Quantity:  p.Quantity,
			Purchased: p.Purchased,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return serviceerrors.NewStorageUnavailableError("encoding product dataset", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".products-*.json")
	if err != nil {
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("creating temp file near %s", r.path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("writing %s", tmpName), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("closing %s", tmpName), err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("replacing %s", r.path), err)
	}
	return nil
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
	if err := r.save(); err != nil {
		r.products = r.products[:len(r.products)-1]
		return err
	}
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
	removed := r.products[i]
	r.products = append(r.products[:i], r.products[i+1:]...)
	if err := r.save(); err != nil {
		r.products = append(r.products[:i], append([]*domain.Product{removed}, r.products[i:]...)...)
		return err
	}
	return nil
}

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
	previous := r.products[i]
	r.products[i] = product.Clone()
	if err := r.save(); err != nil {
		r.products[i] = previous
		return err
	}
	return nil
}

func (r *ProductRepository) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products), nil
}

// HealthCheck verifies the backing file is still reachable.
func (r *ProductRepository) HealthCheck(context.Context) error {
	if _, err := os.Stat(r.path); err != nil {
		return serviceerrors.NewStorageUnavailableError(fmt.Sprintf("stat %s", r.path), err)
	}
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
