package document

import (
	"time"

	"github.com/rafaelleal24/shoplist/internal/core/domain"
)

// ProductDocument uses the caller-supplied product id as the document
// `_id`, so the collection's primary index enforces uniqueness for us.
type ProductDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Quantity  int       `bson:"quantity"`
	Purchased bool      `bson:"purchased"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (doc ProductDocument) GetID() string {
	return doc.ID
}

func (doc *ProductDocument) ToDomain() *domain.Product {
	return &domain.Product{
		ID:        domain.ID(doc.ID),
		Name:      doc.Name,
		Quantity:  doc.Quantity,
		Purchased: doc.Purchased,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func ToProductDocument(p *domain.Product) *ProductDocument {
	return &ProductDocument{
		ID:        string(p.ID),
		Name:      p.Name,
		Quantity:  p.Quantity,
		Purchased: p.Purchased,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
