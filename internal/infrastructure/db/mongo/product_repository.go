package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tesloshop/catalog-api/internal/core/domain"
)

const (
	collectionProducts = "products"
	collectionImages   = "product_images"

	txnTimeout = 30 * time.Second
)

// ProductRepository persists the product aggregate across two collections:
// the parent document and its owned image documents. It is the only
// component that holds a multi-statement transaction handle, and it always
// ends the session before returning.
type ProductRepository struct {
	client   *mongo.Client
	products *mongo.Collection
	images   *mongo.Collection
}

func NewProductRepository(client *mongo.Client, db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		client:   client,
		products: db.Collection(collectionProducts),
		images:   db.Collection(collectionImages),
	}
}

type mongoProduct struct {
	ID          string   `bson:"_id"`
	Title       string   `bson:"title"`
	Price       float64  `bson:"price"`
	Description string   `bson:"description,omitempty"`
	Slug        string   `bson:"slug"`
	Stock       int      `bson:"stock"`
	Sizes       []string `bson:"sizes"`
	Gender      string   `bson:"gender"`
	Tags        []string `bson:"tags"`
	UserID      string   `bson:"user_id,omitempty"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
}

type mongoImage struct {
	ID        string `bson:"_id"`
	URL       string `bson:"url"`
	ProductID string `bson:"product_id"`
}

func toMongoProduct(p *domain.Product) mongoProduct {
	return mongoProduct{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Slug:        p.Slug,
		Stock:       p.Stock,
		Sizes:       p.Sizes,
		Gender:      p.Gender,
		Tags:        p.Tags,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt.Unix(),
		UpdatedAt:   p.UpdatedAt.Unix(),
	}
}

func (mp mongoProduct) toDomain() domain.Product {
	return domain.Product{
		ID:          mp.ID,
		Title:       mp.Title,
		Price:       mp.Price,
		Description: mp.Description,
		Slug:        mp.Slug,
		Stock:       mp.Stock,
		Sizes:       mp.Sizes,
		Gender:      mp.Gender,
		Tags:        mp.Tags,
		UserID:      mp.UserID,
		CreatedAt:   unixToTime(mp.CreatedAt),
		UpdatedAt:   unixToTime(mp.UpdatedAt),
	}
}

func imageDocs(images []domain.ProductImage) []interface{} {
	docs := make([]interface{}, 0, len(images))
	for _, img := range images {
		docs = append(docs, mongoImage{ID: img.ID, URL: img.URL, ProductID: img.ProductID})
	}
	return docs
}

// Create inserts the parent document and its children in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.products.InsertOne(sc, toMongoProduct(p)); err != nil {
			return err
		}
		if len(p.Images) > 0 {
			if _, err := r.images.InsertMany(sc, imageDocs(p.Images)); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads the parent and then its children — an explicit two-step
// load, never an implicit join.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByTerm matches the normalized slug or the title case-insensitively.
func (r *ProductRepository) FindByTerm(ctx context.Context, term string) (*domain.Product, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"slug": domain.NormalizeSlug(term)},
		bson.M{"title": bson.M{"$regex": "^" + regexp.QuoteMeta(term) + "$", "$options": "i"}},
	}}
	return r.findOne(ctx, filter)
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.products.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	product := mp.toDomain()
	images, err := r.loadImages(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Images = images
	return &product, nil
}

func (r *ProductRepository) loadImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	cursor, err := r.images.Find(ctx, bson.M{"product_id": productID})
	if err != nil {
		return nil, fmt.Errorf("find images: %w", err)
	}
	defer cursor.Close(ctx)

	var images []domain.ProductImage
	for cursor.Next(ctx) {
		var mi mongoImage
		if err := cursor.Decode(&mi); err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		images = append(images, domain.ProductImage{ID: mi.ID, URL: mi.URL, ProductID: mi.ProductID})
	}
	return images, cursor.Err()
}

// List returns a page of aggregates, children batch-loaded per parent.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.products.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	var ids []string
	for cursor.Next(ctx) {
		var mp mongoProduct
		if err := cursor.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, mp.toDomain())
		ids = append(ids, mp.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	imgCursor, err := r.images.Find(ctx, bson.M{"product_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer imgCursor.Close(ctx)

	byProduct := make(map[string][]domain.ProductImage, len(ids))
	for imgCursor.Next(ctx) {
		var mi mongoImage
		if err := imgCursor.Decode(&mi); err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		byProduct[mi.ProductID] = append(byProduct[mi.ProductID], domain.ProductImage{ID: mi.ID, URL: mi.URL, ProductID: mi.ProductID})
	}
	if err := imgCursor.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Images = byProduct[products[i].ID]
	}
	return products, nil
}

// Update persists the parent and, when replaceImages is set, swaps the child
// collection wholesale — delete all, insert fresh — inside one transaction.
// Any failure aborts the whole unit, leaving the previous children intact.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product, replaceImages bool) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if replaceImages {
			if _, err := r.images.DeleteMany(sc, bson.M{"product_id": p.ID}); err != nil {
				return err
			}
			if len(p.Images) > 0 {
				if _, err := r.images.InsertMany(sc, imageDocs(p.Images)); err != nil {
					return err
				}
			}
		}

		res, err := r.products.ReplaceOne(sc, bson.M{"_id": p.ID}, toMongoProduct(p))
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	})
}

// Delete removes the parent and all of its children in one transaction.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.images.DeleteMany(sc, bson.M{"product_id": id}); err != nil {
			return err
		}
		res, err := r.products.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	})
}

// DeleteAll wipes both collections. Seed-only.
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.images.DeleteMany(sc, bson.M{}); err != nil {
			return err
		}
		_, err := r.products.DeleteMany(sc, bson.M{})
		return err
	})
}

// withTransaction runs fn inside a session transaction. The session is ended
// on every path, and the transaction context is detached from the caller's
// cancellation: a client disconnect mid-update never leaves a transaction
// open past commit or abort.
func (r *ProductRepository) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	txnCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), txnTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(txnCtx)

	_, err = session.WithTransaction(txnCtx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateProduct
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("product transaction: %w", err)
	}
	return nil
}

// EnsureIndexes creates the uniqueness and lookup indexes.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	_, err = r.images.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}},
	})
	return err
}
