package repositories

import (
	"context"
	"time"

	domain "github.com/salonluxe/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductListFilter narrows catalog listings.
type ProductListFilter struct {
	PublishedOnly bool
	CategoryID    string
}

// ProductRepository reads the product catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
}

// CategoryRepository reads catalog categories. Categories are only ever
// consumed as a full set (catalog navigation, sales joins), so there is no
// per-document lookup.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// LineDemand requests a quantity of a single product during order placement.
type LineDemand struct {
	ProductID string
	Quantity  int
}

// PlaceOrderRequest carries everything the repository needs to persist an order atomically.
// Pricing snapshots are taken from the live product documents inside the same transaction
// that checks and decrements stock.
type PlaceOrderRequest struct {
	OrderID          string
	OrderNumber      string
	Customer         domain.Customer
	Demand           []LineDemand
	LegacyProductRef *string
	Now              time.Time
}

// OrderRepository persists orders and adjusts stock in the same transactional boundary.
type OrderRepository interface {
	Place(ctx context.Context, req PlaceOrderRequest) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// HealthRepository verifies backend connectivity for readiness probes.
type HealthRepository interface {
	CheckReadiness(ctx context.Context) error
}
