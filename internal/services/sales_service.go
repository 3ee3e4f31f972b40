package services

import (
	"context"
	"errors"
	"sort"
	"time"

	domain "github.com/salonluxe/api/internal/domain"
	"github.com/salonluxe/api/internal/repositories"
)

const (
	deletedProductLabel = "Deleted product"
	noCategoryLabel     = "No category"
)

// SalesServiceDeps bundles collaborators required to construct the sales service.
type SalesServiceDeps struct {
	Orders     repositories.OrderRepository
	Products   repositories.ProductRepository
	Categories repositories.CategoryRepository
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type salesService struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	logger     func(context.Context, string, map[string]any)
}

// NewSalesService wires dependencies into a concrete SalesService implementation.
func NewSalesService(deps SalesServiceDeps) (SalesService, error) {
	if deps.Orders == nil {
		return nil, errors.New("sales service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("sales service: product repository is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("sales service: category repository is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &salesService{
		orders:     deps.Orders,
		products:   deps.Products,
		categories: deps.Categories,
		logger:     logger,
	}, nil
}

// SalesAnalytics rolls the full order history up into per-product figures.
// The rollup degrades instead of failing: unavailable catalog data falls back
// to placeholder labels, and an unreadable order history yields an empty
// report.
func (s *salesService) SalesAnalytics(ctx context.Context) (SalesReport, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		s.logger(ctx, "sales.orders.unavailable", map[string]any{"error": err.Error()})
		return SalesReport{Products: []ProductSales{}}, nil
	}

	productsByID := s.loadProducts(ctx)
	categoriesByID := s.loadCategories(ctx)

	type rollup struct {
		productRef   string
		soldQuantity int
		revenue      int64
		orderIDs     map[string]struct{}
		lastSoldAt   time.Time
	}

	rollups := make(map[string]*rollup)
	record := func(order domain.Order, productRef string, quantity int, revenue int64) {
		row, ok := rollups[productRef]
		if !ok {
			row = &rollup{productRef: productRef, orderIDs: make(map[string]struct{})}
			rollups[productRef] = row
		}
		row.soldQuantity += quantity
		row.revenue += revenue
		row.orderIDs[order.ID] = struct{}{}
		if order.CreatedAt.After(row.lastSoldAt) {
			row.lastSoldAt = order.CreatedAt
		}
	}

	summary := SalesSummary{}
	for _, order := range orders {
		summary.OrdersCount++

		if len(order.Items) > 0 {
			for _, item := range order.Items {
				record(order, item.ProductRef, item.Quantity, item.LineTotal)
				summary.TotalItemsSold += item.Quantity
				summary.TotalRevenue += item.LineTotal
			}
			continue
		}

		// Orders written before the multi-line model carry a single product
		// reference and no snapshots. They count as quantity one, valued at
		// the product's current price.
		if order.LegacyProductRef == nil || *order.LegacyProductRef == "" {
			continue
		}
		ref := *order.LegacyProductRef
		var revenue int64
		if product, ok := productsByID[ref]; ok {
			revenue = domain.FinalUnitPrice(product.Price, product.DiscountPercent)
		}
		record(order, ref, 1, revenue)
		summary.TotalItemsSold++
		summary.TotalRevenue += revenue
	}

	rows := make([]ProductSales, 0, len(rollups))
	for _, row := range rollups {
		sales := ProductSales{
			ProductRef:   row.productRef,
			Title:        deletedProductLabel,
			CategoryName: noCategoryLabel,
			SoldQuantity: row.soldQuantity,
			Revenue:      row.revenue,
			OrdersCount:  len(row.orderIDs),
			LastSoldAt:   row.lastSoldAt,
		}
		if product, ok := productsByID[row.productRef]; ok {
			sales.Title = product.Title
			sales.Stock = product.Stock
			if category, ok := categoriesByID[product.CategoryRef]; ok {
				sales.CategoryName = category.Name
			}
		}
		rows = append(rows, sales)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SoldQuantity != rows[j].SoldQuantity {
			return rows[i].SoldQuantity > rows[j].SoldQuantity
		}
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].ProductRef < rows[j].ProductRef
	})

	summary.ProductsWithSales = len(rows)
	return SalesReport{Summary: summary, Products: rows}, nil
}

func (s *salesService) loadProducts(ctx context.Context) map[string]domain.Product {
	products, err := s.products.List(ctx, repositories.ProductListFilter{})
	if err != nil {
		s.logger(ctx, "sales.products.unavailable", map[string]any{"error": err.Error()})
		return map[string]domain.Product{}
	}
	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID
}

func (s *salesService) loadCategories(ctx context.Context) map[string]domain.Category {
	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger(ctx, "sales.categories.unavailable", map[string]any{"error": err.Error()})
		return map[string]domain.Category{}
	}
	byID := make(map[string]domain.Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}
	return byID
}
