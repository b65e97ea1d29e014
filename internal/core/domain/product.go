package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

const MaxNameLength = 255

type Status string

const (
	StatusPurchased    Status = "purchased"
	StatusNotPurchased Status = "not purchased"
)

type Product struct {
	ID        ID
	Name      string
	Quantity  int
	Purchased bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct builds a product with a generated ID. The name is trimmed
// before validation.
func NewProduct(name string, quantity int) (*Product, error) {
	return NewProductWithID(NewID(), name, quantity)
}

// NewProductWithID builds a product with a caller-supplied ID, used when
// reconstructing from storage or when the caller controls identity.
func NewProductWithID(id ID, name string, quantity int) (*Product, error) {
	now := time.Now()
	p := &Product{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Quantity:  quantity,
		Purchased: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces the product invariants. It runs at construction and
// again in every backend before a write.
func (p *Product) Validate() error {
	if p.ID == "" {
		return serviceerrors.NewValidationError("product id cannot be empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		return serviceerrors.NewValidationError("product name cannot be empty")
	}
	if len(p.Name) > MaxNameLength {
		return serviceerrors.NewValidationError(fmt.Sprintf("product name exceeds %d characters", MaxNameLength))
	}
	if p.Quantity <= 0 {
		return serviceerrors.NewValidationError("product quantity must be a positive integer")
	}
	return nil
}

// Status derives the two-valued purchase label; it is never stored.
func (p *Product) Status() Status {
	if p.Purchased {
		return StatusPurchased
	}
	return StatusNotPurchased
}

// Apply replaces the mutable fields from other, keeping identity and
// creation time. The result is validated before p is touched.
func (p *Product) Apply(other *Product) error {
	updated := *p
	updated.Name = strings.TrimSpace(other.Name)
	updated.Quantity = other.Quantity
	updated.Purchased = other.Purchased
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return err
	}
	*p = updated
	return nil
}

// Clone returns an independent copy so callers can never mutate a
// repository's dataset through a returned pointer.
func (p *Product) Clone() *Product {
	clone := *p
	return &clone
}

const (
	EventProductCreated   = "product.created"
	EventProductUpdated   = "product.updated"
	EventProductRemoved   = "product.removed"
	EventProductPurchased = "product.purchased"
)

type ProductEvent struct {
	Name       string    `json:"name"`
	ProductID  ID        `json:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewProductEvent(name string, product *Product) *ProductEvent {
	return &ProductEvent{
		Name:       name,
		ProductID:  product.ID,
		Product:    product.Clone(),
		OccurredAt: time.Now(),
	}
}

func (e *ProductEvent) GetName() string {
	return e.Name
}

func (e *ProductEvent) GetEntityName() string {
	return "product"
}
