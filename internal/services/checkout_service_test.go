package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	domain "github.com/salonluxe/api/internal/domain"
	"github.com/salonluxe/api/internal/repositories"
)

type stubOrderRepository struct {
	placeFn func(ctx context.Context, req repositories.PlaceOrderRequest) (domain.Order, error)
	listFn  func(ctx context.Context) ([]domain.Order, error)
}

func (s *stubOrderRepository) Place(ctx context.Context, req repositories.PlaceOrderRequest) (domain.Order, error) {
	if s.placeFn == nil {
		return domain.Order{}, errors.New("placeFn not configured")
	}
	return s.placeFn(ctx, req)
}

func (s *stubOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	if s.listFn == nil {
		return nil, errors.New("listFn not configured")
	}
	return s.listFn(ctx)
}

type stubNotificationPublisher struct {
	publishFn func(ctx context.Context, message OrderPlacedMessage) (string, error)
	published []OrderPlacedMessage
}

func (s *stubNotificationPublisher) PublishOrderPlaced(ctx context.Context, message OrderPlacedMessage) (string, error) {
	s.published = append(s.published, message)
	if s.publishFn == nil {
		return "msg-1", nil
	}
	return s.publishFn(ctx, message)
}

func validCustomerInput() CustomerInput {
	return CustomerInput{
		FirstName:   " Mia ",
		LastName:    "Keller",
		Email:       "",
		Street:      "Hauptstrasse",
		HouseNumber: "12a",
		PostalCode:  "10115",
		City:        "Berlin",
		Phone:       "+49 30 1234567",
		Note:        "  ",
	}
}

func placeEcho(t *testing.T) (*stubOrderRepository, *repositories.PlaceOrderRequest) {
	t.Helper()
	var captured repositories.PlaceOrderRequest
	repo := &stubOrderRepository{
		placeFn: func(_ context.Context, req repositories.PlaceOrderRequest) (domain.Order, error) {
			captured = req
			items := make([]domain.OrderLine, 0, len(req.Demand))
			totals := domain.OrderTotals{}
			for _, line := range req.Demand {
				lineTotal := int64(500) * int64(line.Quantity)
				items = append(items, domain.OrderLine{
					ProductRef:     line.ProductID,
					Title:          "Argan Oil Shampoo",
					Quantity:       line.Quantity,
					UnitPrice:      500,
					FinalUnitPrice: 500,
					LineTotal:      lineTotal,
				})
				totals.TotalItems += line.Quantity
				totals.TotalAmount += lineTotal
			}
			return domain.Order{
				ID:          req.OrderID,
				OrderNumber: req.OrderNumber,
				Status:      domain.OrderStatusPending,
				Customer:    req.Customer,
				Items:       items,
				Totals:      totals,
				CreatedAt:   req.Now,
			}, nil
		},
	}
	return repo, &captured
}

func newTestCheckoutService(t *testing.T, repo repositories.OrderRepository, publisher OrderNotificationPublisher) CheckoutService {
	t.Helper()
	svc, err := NewCheckoutService(CheckoutServiceDeps{
		Orders:        repo,
		Clock:         func() time.Time { return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC) },
		IDGenerator:   func() string { return "01TESTULID" },
		RandomSuffix:  func() int { return 42 },
		Notifications: publisher,
	})
	if err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}
	return svc
}

func TestPlaceOrderMergesDuplicateLines(t *testing.T) {
	repo, captured := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []OrderItemInput{
			{ProductID: "productA", Quantity: 2},
			{ProductID: "productA", Quantity: 1},
		},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(captured.Demand) != 1 {
		t.Fatalf("expected 1 merged demand line, got %d", len(captured.Demand))
	}
	if captured.Demand[0].ProductID != "productA" || captured.Demand[0].Quantity != 3 {
		t.Fatalf("unexpected demand %+v", captured.Demand[0])
	}
	if order.Totals.TotalItems != 3 || order.Totals.TotalAmount != 1500 {
		t.Fatalf("unexpected totals %+v", order.Totals)
	}
	if len(order.Items) != 1 || order.Items[0].LineTotal != 1500 {
		t.Fatalf("unexpected items %+v", order.Items)
	}
}

func TestPlaceOrderFiltersQuantities(t *testing.T) {
	repo, captured := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []OrderItemInput{
			{ProductID: "productA", Quantity: 2.9},
			{ProductID: "productB", Quantity: 0.5},
			{ProductID: "productC", Quantity: -3},
			{ProductID: "productD", Quantity: math.NaN()},
			{ProductID: "productE", Quantity: math.Inf(1)},
			{ProductID: "", Quantity: 4},
		},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(captured.Demand) != 1 {
		t.Fatalf("expected only productA to survive, got %+v", captured.Demand)
	}
	if captured.Demand[0].Quantity != 2 {
		t.Fatalf("expected floored quantity 2, got %d", captured.Demand[0].Quantity)
	}
}

func TestPlaceOrderPreservesFirstSeenOrder(t *testing.T) {
	repo, captured := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []OrderItemInput{
			{ProductID: "productB", Quantity: 1},
			{ProductID: "productA", Quantity: 1},
			{ProductID: "productB", Quantity: 2},
		},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(captured.Demand) != 2 {
		t.Fatalf("expected 2 demand lines, got %d", len(captured.Demand))
	}
	if captured.Demand[0].ProductID != "productB" || captured.Demand[0].Quantity != 3 {
		t.Fatalf("unexpected first line %+v", captured.Demand[0])
	}
	if captured.Demand[1].ProductID != "productA" || captured.Demand[1].Quantity != 1 {
		t.Fatalf("unexpected second line %+v", captured.Demand[1])
	}
}

func TestPlaceOrderEmptyCartAfterFiltering(t *testing.T) {
	called := false
	repo := &stubOrderRepository{
		placeFn: func(context.Context, repositories.PlaceOrderRequest) (domain.Order, error) {
			called = true
			return domain.Order{}, nil
		},
	}
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []OrderItemInput{
			{ProductID: "productA", Quantity: 0.2},
			{ProductID: "productB", Quantity: -1},
		},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrCheckoutEmptyCart) {
		t.Fatalf("expected ErrCheckoutEmptyCart, got %v", err)
	}
	if called {
		t.Fatal("repository must not be called for an empty cart")
	}
}

func TestPlaceOrderInvalidCustomer(t *testing.T) {
	repo, _ := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	customer := validCustomerInput()
	customer.Phone = "   "
	customer.City = ""

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productA", Quantity: 1}},
		Customer: customer,
	})
	if !errors.Is(err, ErrCheckoutInvalidCustomer) {
		t.Fatalf("expected ErrCheckoutInvalidCustomer, got %v", err)
	}
	if !strings.Contains(err.Error(), "city") || !strings.Contains(err.Error(), "phone") {
		t.Fatalf("expected missing field names in error, got %v", err)
	}
}

func TestPlaceOrderNormalizesCustomer(t *testing.T) {
	repo, captured := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	customer := validCustomerInput()
	customer.Email = " mia@example.com "

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productA", Quantity: 1}},
		Customer: customer,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if captured.Customer.FirstName != "Mia" {
		t.Fatalf("expected trimmed first name, got %q", captured.Customer.FirstName)
	}
	if captured.Customer.Email == nil || *captured.Customer.Email != "mia@example.com" {
		t.Fatalf("unexpected email %v", captured.Customer.Email)
	}
	if captured.Customer.Note != nil {
		t.Fatalf("expected blank note to be dropped, got %v", captured.Customer.Note)
	}
}

func TestPlaceOrderGeneratesOrderNumber(t *testing.T) {
	repo, captured := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productA", Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if captured.OrderNumber != "SLX-20260314-0042" {
		t.Fatalf("unexpected order number %q", captured.OrderNumber)
	}
	if captured.OrderID != "ord_01TESTULID" {
		t.Fatalf("unexpected order id %q", captured.OrderID)
	}
}

func TestPlaceOrderMapsInsufficientStock(t *testing.T) {
	repo := &stubOrderRepository{
		placeFn: func(context.Context, repositories.PlaceOrderRequest) (domain.Order, error) {
			return domain.Order{}, repositories.NewOrderError(repositories.OrderErrorInsufficientStock, `insufficient stock for "Argan Oil Shampoo"`, nil)
		},
	}
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productA", Quantity: 10}},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrCheckoutInsufficientStock) {
		t.Fatalf("expected ErrCheckoutInsufficientStock, got %v", err)
	}
	if !strings.Contains(err.Error(), "Argan Oil Shampoo") {
		t.Fatalf("expected product title in error, got %v", err)
	}
}

func TestPlaceOrderMapsProductNotFound(t *testing.T) {
	repo := &stubOrderRepository{
		placeFn: func(context.Context, repositories.PlaceOrderRequest) (domain.Order, error) {
			return domain.Order{}, repositories.NewOrderError(repositories.OrderErrorProductNotFound, "product productX not found", nil)
		},
	}
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productX", Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrCheckoutProductNotFound) {
		t.Fatalf("expected ErrCheckoutProductNotFound, got %v", err)
	}
}

func TestPlaceOrderPublishesNotification(t *testing.T) {
	repo, _ := placeEcho(t)
	publisher := &stubNotificationPublisher{}
	svc := newTestCheckoutService(t, repo, publisher)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productA", Quantity: 3}},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.OrderID != order.ID || msg.OrderNumber != order.OrderNumber {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.TotalAmount != 1500 || msg.TotalItems != 3 {
		t.Fatalf("unexpected message totals %+v", msg)
	}
}

func TestPlaceOrderPublishFailureDoesNotFailOrder(t *testing.T) {
	repo, _ := placeEcho(t)
	publisher := &stubNotificationPublisher{
		publishFn: func(context.Context, OrderPlacedMessage) (string, error) {
			return "", errors.New("topic unavailable")
		},
	}
	svc := newTestCheckoutService(t, repo, publisher)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items:    []OrderItemInput{{ProductID: "productA", Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected committed order despite publish failure")
	}
}

func TestPlaceSingleItemOrder(t *testing.T) {
	repo, captured := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceSingleItemOrder(context.Background(), PlaceSingleItemOrderCommand{
		ProductID: " productA ",
		Customer:  validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("PlaceSingleItemOrder: %v", err)
	}

	if len(captured.Demand) != 1 {
		t.Fatalf("expected 1 demand line, got %d", len(captured.Demand))
	}
	if captured.Demand[0].ProductID != "productA" || captured.Demand[0].Quantity != 1 {
		t.Fatalf("unexpected demand %+v", captured.Demand[0])
	}
}

func TestPlaceSingleItemOrderRequiresProduct(t *testing.T) {
	repo, _ := placeEcho(t)
	svc := newTestCheckoutService(t, repo, nil)

	_, err := svc.PlaceSingleItemOrder(context.Background(), PlaceSingleItemOrderCommand{
		ProductID: "  ",
		Customer:  validCustomerInput(),
	})
	if !errors.Is(err, ErrCheckoutProductNotFound) {
		t.Fatalf("expected ErrCheckoutProductNotFound, got %v", err)
	}
}
