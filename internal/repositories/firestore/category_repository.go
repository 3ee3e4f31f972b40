package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/salonluxe/api/internal/domain"
	pfirestore "github.com/salonluxe/api/internal/platform/firestore"
)

const categoriesCollection = "categories"

// CategoryRepository reads catalog categories from Firestore.
type CategoryRepository struct {
	provider   *pfirestore.Provider
	categories *pfirestore.BaseRepository[categoryDocument]
}

// NewCategoryRepository constructs a Firestore-backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository requires firestore provider")
	}
	categories := pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection, nil)
	return &CategoryRepository{provider: provider, categories: categories}, nil
}

// List returns all categories in display order.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	if r == nil || r.categories == nil {
		return nil, errors.New("category repository not initialised")
	}

	docs, err := r.categories.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.OrderBy("position", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, doc.Data.toDomain(doc.ID))
	}
	return categories, nil
}

type categoryDocument struct {
	Name      string    `firestore:"name"`
	Slug      string    `firestore:"slug"`
	Position  int       `firestore:"position"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (d categoryDocument) toDomain(id string) domain.Category {
	return domain.Category{
		ID:        id,
		Name:      d.Name,
		Slug:      d.Slug,
		Position:  d.Position,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
