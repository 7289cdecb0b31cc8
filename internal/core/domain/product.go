package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrProductNotFound = errors.New("product not found")
var ErrDuplicateProduct = errors.New("product title or slug already exists")

// ProductImage is a child record owned exclusively by one product. Images are
// replaced wholesale on update, so their ids are not stable across updates.
type ProductImage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ProductID string `json:"-"`
}

// Product is the aggregate root: the parent row plus its owned image
// collection, always written as one unit.
type Product struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Slug        string         `json:"slug"`
	Stock       int            `json:"stock"`
	Sizes       []string       `json:"sizes"`
	Gender      string         `json:"gender"`
	Tags        []string       `json:"tags"`
	Images      []ProductImage `json:"images"`
	UserID      string         `json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NormalizeSlug lower-cases a slug, replaces spaces with underscores and
// strips apostrophes, so human-entered terms match regardless of case or
// punctuation: "Men's Shirt" becomes "mens_shirt".
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "'", "")
	return s
}

// EnsureSlug derives the slug from the title when none was supplied and
// normalizes it in all cases. Called on both insert and update paths.
func (p *Product) EnsureSlug() {
	if p.Slug == "" {
		p.Slug = p.Title
	}
	p.Slug = NormalizeSlug(p.Slug)
}

// ImageURLs projects the child collection to its public representation.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}
