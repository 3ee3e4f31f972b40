package services

import (
	"context"
	"time"

	domain "github.com/salonluxe/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Category     = domain.Category
	Product      = domain.Product
	Customer     = domain.Customer
	Order        = domain.Order
	OrderLine    = domain.OrderLine
	OrderTotals  = domain.OrderTotals
	OrderStatus  = domain.OrderStatus
	ProductSales = domain.ProductSales
	SalesSummary = domain.SalesSummary
	SalesReport  = domain.SalesReport
)

// OrderItemInput is one raw cart entry submitted at checkout. Quantities may
// arrive as arbitrary floating point values and are floored before use.
type OrderItemInput struct {
	ProductID string
	Quantity  float64
}

// CustomerInput carries the raw customer form fields submitted at checkout.
type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	Phone       string
	Note        string
}

// PlaceOrderCommand requests placement of a multi-line order.
type PlaceOrderCommand struct {
	Items    []OrderItemInput
	Customer CustomerInput
}

// PlaceSingleItemOrderCommand requests placement of a legacy single-product order.
type PlaceSingleItemOrderCommand struct {
	ProductID string
	Customer  CustomerInput
}

// CheckoutService places customer orders against live inventory.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (Order, error)
	PlaceSingleItemOrder(ctx context.Context, cmd PlaceSingleItemOrderCommand) (Order, error)
}

// SalesService aggregates order history into per-product sales figures.
type SalesService interface {
	SalesAnalytics(ctx context.Context) (SalesReport, error)
}

// CatalogListFilter narrows public catalog listings.
type CatalogListFilter struct {
	CategoryID string
}

// CatalogService exposes the public product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, filter CatalogListFilter) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// OrderPlacedMessage is the payload published after an order commits.
type OrderPlacedMessage struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	TotalItems  int       `json:"totalItems"`
	TotalAmount int64     `json:"totalAmount"`
	PlacedAt    time.Time `json:"placedAt"`
}

// OrderNotificationPublisher notifies downstream consumers of placed orders.
type OrderNotificationPublisher interface {
	PublishOrderPlaced(ctx context.Context, message OrderPlacedMessage) (string, error)
}
