package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/salonluxe/api/internal/domain"
	"github.com/salonluxe/api/internal/repositories"
)

const (
	orderIDPrefix            = "ord_"
	defaultOrderNumberPrefix = "SLX"
)

var (
	// ErrCheckoutInvalidCustomer signals missing or blank required customer fields.
	ErrCheckoutInvalidCustomer = errors.New("checkout: invalid customer")
	// ErrCheckoutEmptyCart indicates no purchasable line remained after filtering.
	ErrCheckoutEmptyCart = errors.New("checkout: cart is empty")
	// ErrCheckoutProductNotFound indicates a referenced product does not exist.
	ErrCheckoutProductNotFound = errors.New("checkout: product not found")
	// ErrCheckoutInsufficientStock indicates available stock cannot cover a requested quantity.
	ErrCheckoutInsufficientStock = errors.New("checkout: insufficient stock")
)

// CheckoutServiceDeps bundles collaborators required to construct the checkout service.
type CheckoutServiceDeps struct {
	Orders            repositories.OrderRepository
	OrderNumberPrefix string
	Clock             func() time.Time
	IDGenerator       func() string
	RandomSuffix      func() int
	Notifications     OrderNotificationPublisher
	Logger            func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	orders        repositories.OrderRepository
	numberPrefix  string
	clock         func() time.Time
	newID         func() string
	randomSuffix  func() int
	notifications OrderNotificationPublisher
	logger        func(context.Context, string, map[string]any)
}

// NewCheckoutService wires dependencies into a concrete CheckoutService implementation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}

	prefix := strings.TrimSpace(deps.OrderNumberPrefix)
	if prefix == "" {
		prefix = defaultOrderNumberPrefix
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	random := deps.RandomSuffix
	if random == nil {
		random = func() int {
			return rand.Intn(10000)
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		orders:       deps.Orders,
		numberPrefix: prefix,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:         idGen,
		randomSuffix:  random,
		notifications: deps.Notifications,
		logger:        logger,
	}, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (Order, error) {
	customer, err := normalizeCustomer(cmd.Customer)
	if err != nil {
		return Order{}, err
	}

	demand, err := aggregateLines(cmd.Items)
	if err != nil {
		return Order{}, err
	}

	return s.place(ctx, customer, demand)
}

func (s *checkoutService) PlaceSingleItemOrder(ctx context.Context, cmd PlaceSingleItemOrderCommand) (Order, error) {
	customer, err := normalizeCustomer(cmd.Customer)
	if err != nil {
		return Order{}, err
	}

	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Order{}, fmt.Errorf("%w: product id is required", ErrCheckoutProductNotFound)
	}

	demand := []repositories.LineDemand{{ProductID: productID, Quantity: 1}}
	return s.place(ctx, customer, demand)
}

func (s *checkoutService) place(ctx context.Context, customer domain.Customer, demand []repositories.LineDemand) (Order, error) {
	now := s.clock()
	req := repositories.PlaceOrderRequest{
		OrderID:     orderIDPrefix + s.newID(),
		OrderNumber: s.generateOrderNumber(now),
		Customer:    customer,
		Demand:      demand,
		Now:         now,
	}

	order, err := s.orders.Place(ctx, req)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "order.placed", map[string]any{
		"order":       order.ID,
		"orderNumber": order.OrderNumber,
		"items":       order.Totals.TotalItems,
		"amount":      order.Totals.TotalAmount,
	})

	s.notifyPlaced(ctx, order)
	return order, nil
}

// notifyPlaced publishes a best-effort event. The order is already committed,
// so publish failures are logged and swallowed.
func (s *checkoutService) notifyPlaced(ctx context.Context, order Order) {
	if s.notifications == nil {
		return
	}
	message := OrderPlacedMessage{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalItems:  order.Totals.TotalItems,
		TotalAmount: order.Totals.TotalAmount,
		PlacedAt:    order.CreatedAt,
	}
	if _, err := s.notifications.PublishOrderPlaced(ctx, message); err != nil {
		s.logger(ctx, "order.notify.failed", map[string]any{
			"order": order.ID,
			"error": err.Error(),
		})
	}
}

func (s *checkoutService) generateOrderNumber(now time.Time) string {
	suffix := s.randomSuffix() % 10000
	if suffix < 0 {
		suffix = -suffix
	}
	return fmt.Sprintf("%s-%s-%04d", s.numberPrefix, now.Format("20060102"), suffix)
}

func (s *checkoutService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var orderErr *repositories.OrderError
	if errors.As(err, &orderErr) {
		switch orderErr.Code {
		case repositories.OrderErrorProductNotFound:
			return fmt.Errorf("%w: %s", ErrCheckoutProductNotFound, orderErr.Message)
		case repositories.OrderErrorInsufficientStock:
			return fmt.Errorf("%w: %s", ErrCheckoutInsufficientStock, orderErr.Message)
		}
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCheckoutProductNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("checkout: repository unavailable: %w", err)
		}
	}

	return err
}

// normalizeCustomer trims every submitted field and validates the required
// set. Optional email and note become nil when blank so stored orders carry
// no empty-string fields.
func normalizeCustomer(input CustomerInput) (domain.Customer, error) {
	customer := domain.Customer{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Street:      strings.TrimSpace(input.Street),
		HouseNumber: strings.TrimSpace(input.HouseNumber),
		PostalCode:  strings.TrimSpace(input.PostalCode),
		City:        strings.TrimSpace(input.City),
		Phone:       strings.TrimSpace(input.Phone),
	}

	var missing []string
	appendMissing := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	appendMissing("firstName", customer.FirstName)
	appendMissing("lastName", customer.LastName)
	appendMissing("street", customer.Street)
	appendMissing("houseNumber", customer.HouseNumber)
	appendMissing("postalCode", customer.PostalCode)
	appendMissing("city", customer.City)
	appendMissing("phone", customer.Phone)
	if len(missing) > 0 {
		return domain.Customer{}, fmt.Errorf("%w: missing fields [%s]", ErrCheckoutInvalidCustomer, strings.Join(missing, ", "))
	}

	if email := strings.TrimSpace(input.Email); email != "" {
		customer.Email = &email
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		customer.Note = &note
	}
	return customer, nil
}

// aggregateLines floors quantities, silently drops non-positive or non-finite
// entries, and merges duplicate product references by summing quantities. The
// first occurrence of each product fixes its position in the result.
func aggregateLines(items []OrderItemInput) ([]repositories.LineDemand, error) {
	index := make(map[string]int)
	demand := make([]repositories.LineDemand, 0, len(items))

	for _, item := range items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			continue
		}
		if math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) {
			continue
		}
		quantity := int(math.Floor(item.Quantity))
		if quantity <= 0 {
			continue
		}

		if pos, ok := index[productID]; ok {
			demand[pos].Quantity += quantity
			continue
		}
		index[productID] = len(demand)
		demand = append(demand, repositories.LineDemand{ProductID: productID, Quantity: quantity})
	}

	if len(demand) == 0 {
		return nil, ErrCheckoutEmptyCart
	}
	return demand, nil
}
