package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salonluxe/api/internal/platform/httpx"
	"github.com/salonluxe/api/internal/services"
)

// SalesHandlers exposes admin sales reporting endpoints.
type SalesHandlers struct {
	sales services.SalesService
}

// NewSalesHandlers constructs sales handlers backed by the sales service.
func NewSalesHandlers(sales services.SalesService) *SalesHandlers {
	return &SalesHandlers{sales: sales}
}

// Routes registers admin sales endpoints under the provided router.
func (h *SalesHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/sales", h.salesAnalytics)
}

type salesSummaryResponse struct {
	OrdersCount       int   `json:"ordersCount"`
	TotalItemsSold    int   `json:"totalItemsSold"`
	TotalRevenue      int64 `json:"totalRevenue"`
	ProductsWithSales int   `json:"productsWithSales"`
}

type productSalesResponse struct {
	ProductID    string `json:"productId"`
	Title        string `json:"title"`
	CategoryName string `json:"categoryName"`
	SoldQuantity int    `json:"soldQuantity"`
	Revenue      int64  `json:"revenue"`
	OrdersCount  int    `json:"ordersCount"`
	LastSoldAt   string `json:"lastSoldAt,omitempty"`
	Stock        int    `json:"stock"`
}

type salesReportResponse struct {
	Summary  salesSummaryResponse   `json:"summary"`
	Products []productSalesResponse `json:"products"`
}

func (h *SalesHandlers) salesAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sales == nil {
		httpx.WriteError(ctx, w, httpx.NewError("sales_unavailable", "sales service unavailable", http.StatusServiceUnavailable))
		return
	}

	report, err := h.sales.SalesAnalytics(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "sales aggregation failed", http.StatusInternalServerError))
		return
	}

	products := make([]productSalesResponse, 0, len(report.Products))
	for _, row := range report.Products {
		item := productSalesResponse{
			ProductID:    row.ProductRef,
			Title:        row.Title,
			CategoryName: row.CategoryName,
			SoldQuantity: row.SoldQuantity,
			Revenue:      row.Revenue,
			OrdersCount:  row.OrdersCount,
			Stock:        row.Stock,
		}
		if !row.LastSoldAt.IsZero() {
			item.LastSoldAt = row.LastSoldAt.UTC().Format(time.RFC3339)
		}
		products = append(products, item)
	}

	httpx.WriteJSON(w, http.StatusOK, salesReportResponse{
		Summary: salesSummaryResponse{
			OrdersCount:       report.Summary.OrdersCount,
			TotalItemsSold:    report.Summary.TotalItemsSold,
			TotalRevenue:      report.Summary.TotalRevenue,
			ProductsWithSales: report.Summary.ProductsWithSales,
		},
		Products: products,
	})
}
