package ports

import (
	"context"
)

// CreateProductInput carries the fields for creating a product aggregate.
// Images holds child reference strings (URLs); an empty list means "no
// children yet".
type CreateProductInput struct {
	Title       string
	Price       float64
	Description string
	Slug        string
	Stock       int
	Sizes       []string
	Gender      string
	Tags        []string
	Images      []string
	UserID      string
}

// UpdateProductInput is a partial patch: nil pointers leave a field
// untouched. Images follows the same rule at the collection level — nil
// leaves the existing children alone, a non-nil slice (empty included)
// replaces them wholesale.
type UpdateProductInput struct {
	Title       *string
	Price       *float64
	Description *string
	Slug        *string
	Stock       *int
	Sizes       []string
	Gender      *string
	Tags        []string
	Images      []string
}

// ProductView is the canonical read shape of the aggregate: children are
// projected to their URL strings.
type ProductView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Stock       int      `json:"stock"`
	Sizes       []string `json:"sizes"`
	Gender      string   `json:"gender"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	UserID      string   `json:"user_id,omitempty"`
}

// ProductService exposes the aggregate operations.
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*ProductView, error)
	List(ctx context.Context, limit, offset int) ([]ProductView, error)
	FindOne(ctx context.Context, term string) (*ProductView, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*ProductView, error)
	Remove(ctx context.Context, id string) error
	RemoveAll(ctx context.Context) error
}
