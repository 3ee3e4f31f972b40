package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salonluxe/api/internal/platform/httpx"
	"github.com/salonluxe/api/internal/services"
)

const maxOrderRequestBody = 64 * 1024

// OrderHandlers exposes order placement endpoints.
type OrderHandlers struct {
	checkout services.CheckoutService
}

// NewOrderHandlers constructs order handlers backed by the checkout service.
func NewOrderHandlers(checkout services.CheckoutService) *OrderHandlers {
	return &OrderHandlers{checkout: checkout}
}

// Routes registers order endpoints under the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
	r.Post("/single", h.placeSingleItemOrder)
}

type orderItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

type customerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Note        string `json:"note"`
}

type placeOrderRequest struct {
	Items    []orderItemRequest `json:"items"`
	Customer customerRequest    `json:"customer"`
}

// legacyCustomerRequest is the reduced customer payload accepted by the
// single-item endpoint, which predates the email and note fields.
type legacyCustomerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
}

type placeSingleOrderRequest struct {
	ProductID string                `json:"productId"`
	Customer  legacyCustomerRequest `json:"customer"`
}

type orderLineResponse struct {
	ProductID       string `json:"productId"`
	Title           string `json:"title"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unitPrice"`
	DiscountPercent int    `json:"discountPercent"`
	FinalUnitPrice  int64  `json:"finalUnitPrice"`
	LineTotal       int64  `json:"lineTotal"`
}

type orderCustomerResponse struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       *string `json:"email,omitempty"`
	Street      string  `json:"street"`
	HouseNumber string  `json:"houseNumber"`
	PostalCode  string  `json:"postalCode"`
	City        string  `json:"city"`
	Phone       string  `json:"phone"`
	Note        *string `json:"note,omitempty"`
}

type orderResponse struct {
	ID          string                `json:"id"`
	OrderNumber string                `json:"orderNumber"`
	Status      string                `json:"status"`
	Customer    orderCustomerResponse `json:"customer"`
	Items       []orderLineResponse   `json:"items"`
	TotalItems  int                   `json:"totalItems"`
	TotalAmount int64                 `json:"totalAmount"`
	CreatedAt   string                `json:"createdAt"`
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderRequestBody)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req placeOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	cmd := services.PlaceOrderCommand{
		Items:    make([]services.OrderItemInput, 0, len(req.Items)),
		Customer: newCustomerInput(req.Customer),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, services.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.checkout.PlaceOrder(ctx, cmd)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newOrderResponse(order))
}

func (h *OrderHandlers) placeSingleItemOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderRequestBody)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req placeSingleOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	order, err := h.checkout.PlaceSingleItemOrder(ctx, services.PlaceSingleItemOrderCommand{
		ProductID: req.ProductID,
		Customer: services.CustomerInput{
			FirstName:   req.Customer.FirstName,
			LastName:    req.Customer.LastName,
			Street:      req.Customer.Street,
			HouseNumber: req.Customer.HouseNumber,
			PostalCode:  req.Customer.PostalCode,
			City:        req.Customer.City,
			Phone:       req.Customer.Phone,
		},
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newOrderResponse(order))
}

func newCustomerInput(req customerRequest) services.CustomerInput {
	return services.CustomerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Phone:       req.Phone,
		Note:        req.Note,
	}
}

func newOrderResponse(order services.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderLineResponse{
			ProductID:       item.ProductRef,
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			FinalUnitPrice:  item.FinalUnitPrice,
			LineTotal:       item.LineTotal,
		})
	}
	return orderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Customer: orderCustomerResponse{
			FirstName:   order.Customer.FirstName,
			LastName:    order.Customer.LastName,
			Email:       order.Customer.Email,
			Street:      order.Customer.Street,
			HouseNumber: order.Customer.HouseNumber,
			PostalCode:  order.Customer.PostalCode,
			City:        order.Customer.City,
			Phone:       order.Customer.Phone,
			Note:        order.Customer.Note,
		},
		Items:       items,
		TotalItems:  order.Totals.TotalItems,
		TotalAmount: order.Totals.TotalAmount,
		CreatedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidCustomer):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_customer", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutInsufficientStock):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "order placement failed", http.StatusInternalServerError))
	}
}
