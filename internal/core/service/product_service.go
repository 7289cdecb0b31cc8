package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tesloshop/catalog-api/internal/api/metrics"
	"github.com/tesloshop/catalog-api/internal/core/domain"
	"github.com/tesloshop/catalog-api/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ImageCleaner receives the URLs of child images that were dropped by a
// replacement, for asynchronous cleanup of orphaned files. A nil cleaner
// disables the hook.
type ImageCleaner interface {
	EnqueueRemoval(productID string, urls []string)
}

// ProductService coordinates the product aggregate: the parent document plus
// its owned image collection, written as one atomic unit.
type ProductService struct {
	repo    ports.ProductRepository
	cleaner ImageCleaner
	log     zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, cleaner ImageCleaner, log zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, cleaner: cleaner, log: log}
}

// Create builds the aggregate with fresh child records and persists it. An
// empty image list means the product starts with no children.
func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*ports.ProductView, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Slug:        in.Slug,
		Stock:       in.Stock,
		Sizes:       in.Sizes,
		Gender:      in.Gender,
		Tags:        in.Tags,
		UserID:      in.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product.EnsureSlug()
	product.Images = newImages(product.ID, in.Images)

	if err := s.repo.Create(ctx, product); err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Msg("create product failed")
		return nil, err
	}

	s.log.Info().Str("product_id", product.ID).Str("slug", product.Slug).Msg("product created")
	return toView(product), nil
}

// List returns a page of aggregates in their read shape.
func (s *ProductService) List(ctx context.Context, limit, offset int) ([]ports.ProductView, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]ports.ProductView, 0, len(products))
	for i := range products {
		views = append(views, *toView(&products[i]))
	}
	return views, nil
}

// FindOne looks a product up by id when term parses as a UUID, otherwise by
// slug or title. Terms are matched case- and punctuation-insensitively.
func (s *ProductService) FindOne(ctx context.Context, term string) (*ports.ProductView, error) {
	product, err := s.findOne(ctx, term)
	if err != nil {
		return nil, err
	}
	return toView(product), nil
}

func (s *ProductService) findOne(ctx context.Context, term string) (*domain.Product, error) {
	if _, err := uuid.Parse(term); err == nil {
		return s.repo.FindByID(ctx, term)
	}
	return s.repo.FindByTerm(ctx, term)
}

// Update applies a partial patch to the parent and, when in.Images is
// non-nil, replaces the child collection wholesale inside one transaction.
// On any failure the previous children remain intact. The returned view is
// re-read after commit.
func (s *ProductService) Update(ctx context.Context, id string, in ports.UpdateProductInput) (*ports.ProductView, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := product.ImageURLs()
	applyPatch(product, in)
	product.EnsureSlug()
	product.UpdatedAt = time.Now().UTC()

	replace := in.Images != nil
	if replace {
		product.Images = newImages(product.ID, in.Images)
	}

	if err := s.repo.Update(ctx, product, replace); err != nil {
		if replace {
			metrics.ImageReplacementsTotal.WithLabelValues("rolled_back").Inc()
		}
		s.log.Error().Err(err).Str("product_id", id).Msg("update product failed")
		return nil, err
	}
	if replace {
		metrics.ImageReplacementsTotal.WithLabelValues("committed").Inc()
	}

	if replace && s.cleaner != nil {
		if dropped := droppedURLs(previous, in.Images); len(dropped) > 0 {
			s.cleaner.EnqueueRemoval(product.ID, dropped)
		}
	}

	s.log.Info().Str("product_id", id).Bool("images_replaced", replace).Msg("product updated")

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(updated), nil
}

// Remove deletes the aggregate, children included.
func (s *ProductService) Remove(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RemoveAll wipes the catalog. Used by the seed path.
func (s *ProductService) RemoveAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func applyPatch(p *domain.Product, in ports.UpdateProductInput) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Slug != nil {
		p.Slug = *in.Slug
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
}

// newImages constructs fresh child records; ids are new on every replacement
// since the swap is wholesale, not keyed.
func newImages(productID string, urls []string) []domain.ProductImage {
	images := make([]domain.ProductImage, 0, len(urls))
	for _, url := range urls {
		images = append(images, domain.ProductImage{
			ID:        uuid.NewString(),
			URL:       url,
			ProductID: productID,
		})
	}
	return images
}

func droppedURLs(previous, next []string) []string {
	kept := make(map[string]struct{}, len(next))
	for _, url := range next {
		kept[url] = struct{}{}
	}
	var dropped []string
	for _, url := range previous {
		if _, ok := kept[url]; !ok {
			dropped = append(dropped, url)
		}
	}
	return dropped
}

func toView(p *domain.Product) *ports.ProductView {
	return &ports.ProductView{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Slug:        p.Slug,
		Stock:       p.Stock,
		Sizes:       p.Sizes,
		Gender:      p.Gender,
		Tags:        p.Tags,
		Images:      p.ImageURLs(),
		UserID:      p.UserID,
	}
}
