package ports

import (
	"context"

	"github.com/tesloshop/catalog-api/internal/core/domain"
)

// ProductRepository defines the persistence interface for the product
// aggregate. Update is the only multi-statement operation: it runs inside a
// transaction that either commits the parent write plus the wholesale image
// replacement, or rolls back leaving the previous children intact.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByTerm(ctx context.Context, term string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	// Update persists the parent document and, when replaceImages is true,
	// deletes all existing children and inserts product.Images in their place.
	// When replaceImages is false the existing children are left untouched.
	Update(ctx context.Context, product *domain.Product, replaceImages bool) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
