package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tesloshop/catalog-api/internal/core/domain"
	"github.com/tesloshop/catalog-api/internal/core/ports"
)

// SeedService wipes the catalog and loads the sample data set. The seed
// admin user is created once and reused on later runs.
type SeedService struct {
	products ports.ProductService
	users    ports.UserRepository
	hasher   PasswordHasher
	log      zerolog.Logger
}

func NewSeedService(products ports.ProductService, users ports.UserRepository, hasher PasswordHasher, log zerolog.Logger) *SeedService {
	return &SeedService{products: products, users: users, hasher: hasher, log: log}
}

const (
	seedAdminEmail    = "admin@tesloshop.local"
	seedAdminName     = "Seed Admin"
	seedAdminPassword = "Abc123456"
)

// Run replaces the entire catalog with the seed products.
func (s *SeedService) Run(ctx context.Context) error {
	admin, err := s.ensureAdmin(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if err := s.products.RemoveAll(ctx); err != nil {
		return fmt.Errorf("seed wipe: %w", err)
	}

	for _, in := range seedProducts {
		in.UserID = admin.ID
		if _, err := s.products.Create(ctx, in); err != nil {
			return fmt.Errorf("seed product %q: %w", in.Title, err)
		}
	}

	s.log.Info().Int("products", len(seedProducts)).Msg("seed executed")
	return nil
}

func (s *SeedService) ensureAdmin(ctx context.Context) (*domain.User, error) {
	admin, err := s.users.FindByEmail(ctx, seedAdminEmail)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(seedAdminPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        seedAdminEmail,
		PasswordHash: hash,
		FullName:     seedAdminName,
		IsActive:     true,
		Roles:        []string{domain.RoleAdmin, domain.RoleSuperUser, domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

var seedProducts = []ports.CreateProductInput{
	{
		Title:       "Men's Chill Crew Neck Sweatshirt",
		Price:       75,
		Description: "Introducing the softest crew neck in the collection, made from recycled cotton fleece.",
		Stock:       7,
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Gender:      "men",
		Tags:        []string{"sweatshirt"},
		Images:      []string{"1740176-00-A_0_2000.jpg", "1740176-00-A_1.jpg"},
	},
	{
		Title:       "Men's Quilted Shirt Jacket",
		Price:       200,
		Description: "A lightweight quilted jacket with a durable outer shell and a quilted lining.",
		Stock:       5,
		Sizes:       []string{"XS", "S", "M", "XL", "XXL"},
		Gender:      "men",
		Tags:        []string{"jacket"},
		Images:      []string{"1740507-00-A_0_2000.jpg", "1740507-00-A_1.jpg"},
	},
	{
		Title:       "Men's Raven Lightweight Zip Up Bomber Jacket",
		Price:       130,
		Description: "A lightweight bomber with a premium matte finish and minimal branding.",
		Stock:       10,
		Sizes:       []string{"S", "M", "L", "XL", "XXL"},
		Gender:      "men",
		Tags:        []string{"shirt"},
		Images:      []string{"1740250-00-A_0_2000.jpg", "1740250-00-A_1.jpg"},
	},
	{
		Title:       "Women's Cropped Puffer Jacket",
		Price:       225,
		Description: "A cropped silhouette with an insulated fill made from recycled materials.",
		Stock:       85,
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "women",
		Tags:        []string{"jacket", "women"},
		Images:      []string{"1654219-00-A_0_2000.jpg", "1654219-00-A_1.jpg"},
	},
	{
		Title:       "Women's Chill Half Zip Cropped Hoodie",
		Price:       130,
		Description: "A soft fleece hoodie with an elastic hem that gathers at the waist.",
		Stock:       10,
		Sizes:       []string{"XS", "S", "M", "XXL"},
		Gender:      "women",
		Tags:        []string{"hoodie"},
		Images:      []string{"1740535-00-A_0_2000.jpg", "1740535-00-A_1.jpg"},
	},
	{
		Title:       "Kids Cyberquad Bomber Jacket",
		Price:       65,
		Description: "A graphic bomber for the younger crowd, with a padded collar and zip pockets.",
		Stock:       10,
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "kid",
		Tags:        []string{"shirt"},
		Images:      []string{"1742702-00-A_0_2000.jpg", "1742702-00-A_1.jpg"},
	},
}
