package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/salonluxe/api/internal/domain"
	pfirestore "github.com/salonluxe/api/internal/platform/firestore"
	"github.com/salonluxe/api/internal/repositories"
)

const productsCollection = "products"

// ProductRepository reads the product catalog from Firestore.
type ProductRepository struct {
	provider *pfirestore.Provider
	products *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	products := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil)
	return &ProductRepository{provider: provider, products: products}, nil
}

// FindByID fetches a single product by document ID.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.products == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, errors.New("product repository: product id is required")
	}

	doc, err := r.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// List returns catalog products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if r == nil || r.products == nil {
		return nil, errors.New("product repository not initialised")
	}

	docs, err := r.products.Query(ctx, func(query firestore.Query) firestore.Query {
		if filter.PublishedOnly {
			query = query.Where("isPublished", "==", true)
		}
		if categoryID := strings.TrimSpace(filter.CategoryID); categoryID != "" {
			query = query.Where("categoryRef", "==", categoryID)
		}
		return query.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data.toDomain(doc.ID))
	}
	return products, nil
}

type productDocument struct {
	Title           string    `firestore:"title"`
	Description     string    `firestore:"description"`
	Price           int64     `firestore:"price"`
	DiscountPercent int       `firestore:"discountPercent"`
	Stock           int       `firestore:"stock"`
	CategoryRef     string    `firestore:"categoryRef"`
	ImagePath       string    `firestore:"imagePath"`
	IsPublished     bool      `firestore:"isPublished"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

func (d productDocument) toDomain(id string) domain.Product {
	return domain.Product{
		ID:              id,
		Title:           d.Title,
		Description:     d.Description,
		Price:           d.Price,
		DiscountPercent: d.DiscountPercent,
		Stock:           d.Stock,
		CategoryRef:     d.CategoryRef,
		ImagePath:       d.ImagePath,
		IsPublished:     d.IsPublished,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
