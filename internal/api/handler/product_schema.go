package handler

import "github.com/tesloshop/catalog-api/internal/core/ports"

type createProductRequest struct {
	Title       string   `json:"title" validate:"required,min=1"`
	Price       float64  `json:"price" validate:"gte=0"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Sizes       []string `json:"sizes" validate:"required,min=1"`
	Gender      string   `json:"gender" validate:"required,oneof=men women kid unisex"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

// updateProductRequest is a partial patch: absent fields stay nil and leave
// the stored value untouched. Images nil means "keep the current children";
// an explicit empty list clears them.
type updateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
	Slug        *string  `json:"slug"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Sizes       []string `json:"sizes"`
	Gender      *string  `json:"gender" validate:"omitempty,oneof=men women kid unisex"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

func (r createProductRequest) toInput(userID string) ports.CreateProductInput {
	return ports.CreateProductInput{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Slug:        r.Slug,
		Stock:       r.Stock,
		Sizes:       r.Sizes,
		Gender:      r.Gender,
		Tags:        r.Tags,
		Images:      r.Images,
		UserID:      userID,
	}
}

func (r updateProductRequest) toInput() ports.UpdateProductInput {
	return ports.UpdateProductInput{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Slug:        r.Slug,
		Stock:       r.Stock,
		Sizes:       r.Sizes,
		Gender:      r.Gender,
		Tags:        r.Tags,
		Images:      r.Images,
	}
}
