package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salonluxe/api/internal/services"
)

type stubSalesService struct {
	analyticsFn func(ctx context.Context) (services.SalesReport, error)
}

func (s *stubSalesService) SalesAnalytics(ctx context.Context) (services.SalesReport, error) {
	if s.analyticsFn == nil {
		return services.SalesReport{}, errors.New("analyticsFn not configured")
	}
	return s.analyticsFn(ctx)
}

func TestSalesHandlersSalesAnalytics(t *testing.T) {
	router := chi.NewRouter()
	service := &stubSalesService{
		analyticsFn: func(context.Context) (services.SalesReport, error) {
			return services.SalesReport{
				Summary: services.SalesSummary{
					OrdersCount:       2,
					TotalItemsSold:    4,
					TotalRevenue:      3200,
					ProductsWithSales: 2,
				},
				Products: []services.ProductSales{
					{
						ProductRef:   "productA",
						Title:        "Argan Oil Shampoo",
						CategoryName: "Shampoo",
						SoldQuantity: 3,
						Revenue:      2700,
						OrdersCount:  2,
						LastSoldAt:   time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
						Stock:        7,
					},
					{
						ProductRef:   "gone",
						Title:        "Deleted product",
						CategoryName: "No category",
						SoldQuantity: 1,
						Revenue:      500,
						OrdersCount:  1,
					},
				},
			}, nil
		},
	}
	NewSalesHandlers(service).Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp salesReportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Summary.TotalRevenue != 3200 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
	if len(resp.Products) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Products))
	}
	if resp.Products[0].ProductID != "productA" || resp.Products[0].Revenue != 2700 {
		t.Fatalf("unexpected first row %+v", resp.Products[0])
	}
	if resp.Products[1].LastSoldAt != "" {
		t.Fatalf("expected empty lastSoldAt for zero time, got %q", resp.Products[1].LastSoldAt)
	}
}

func TestSalesHandlersSalesAnalyticsFailure(t *testing.T) {
	router := chi.NewRouter()
	service := &stubSalesService{
		analyticsFn: func(context.Context) (services.SalesReport, error) {
			return services.SalesReport{}, errors.New("boom")
		},
	}
	NewSalesHandlers(service).Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}
