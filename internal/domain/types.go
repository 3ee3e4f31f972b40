package domain

import (
	"time"
)

// Category groups products for storefront navigation and sales reporting.
type Category struct {
	ID        string
	Name      string
	Slug      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product represents a catalog item sold by the storefront. Prices are stored
// in the smallest currency unit. This engine reads products and decrements
// Stock during order placement; all other mutations belong to admin tooling.
type Product struct {
	ID              string
	Title           string
	Description     string
	Price           int64
	DiscountPercent int
	Stock           int
	CategoryRef     string
	ImagePath       string
	IsPublished     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Customer is the shipping/contact snapshot embedded in an order. It is not a
// standalone account; historical records are trusted as stored.
type Customer struct {
	FirstName   string
	LastName    string
	Email       *string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	Phone       string
	Note        *string
}

// OrderStatus enumerates lifecycle states for orders. The placement engine
// only ever creates pending orders; later transitions are driven by admin
// tooling outside this service.
type OrderStatus string

const (
	// OrderStatusPending indicates the order is placed and awaits handling.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessed indicates staff picked up the order.
	OrderStatusProcessed OrderStatus = "processed"
	// OrderStatusCompleted indicates the order has been fulfilled.
	OrderStatusCompleted OrderStatus = "completed"
)

// OrderLine is one product-and-quantity entry within a committed order, with
// title, price, and discount snapshotted at order time.
type OrderLine struct {
	ProductRef      string
	Title           string
	Quantity        int
	UnitPrice       int64
	DiscountPercent int
	FinalUnitPrice  int64
	LineTotal       int64
}

// OrderTotals holds the rolled-up quantity and amount for an order.
type OrderTotals struct {
	TotalItems  int
	TotalAmount int64
}

// Order captures a committed purchase. Orders are immutable once created.
// LegacyProductRef carries the single-product reference used by orders
// created before the multi-line model existed; it is never written by new
// code and is consumed only by the sales rollup fallback.
type Order struct {
	ID               string
	OrderNumber      string
	Status           OrderStatus
	Customer         Customer
	Items            []OrderLine
	Totals           OrderTotals
	LegacyProductRef *string
	CreatedAt        time.Time
}

// ProductSales is one per-product row of the sales rollup. Stock and
// CategoryName are read live at aggregation time, not at time of sale.
type ProductSales struct {
	ProductRef   string
	Title        string
	CategoryName string
	SoldQuantity int
	Revenue      int64
	OrdersCount  int
	LastSoldAt   time.Time
	Stock        int
}

// SalesSummary aggregates the rollup headline figures.
type SalesSummary struct {
	OrdersCount       int
	TotalItemsSold    int
	TotalRevenue      int64
	ProductsWithSales int
}

// SalesReport packages the summary plus per-product rows sorted by sold
// quantity descending, ties broken by revenue descending.
type SalesReport struct {
	Summary  SalesSummary
	Products []ProductSales
}
