package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/salonluxe/api/internal/domain"
	pfirestore "github.com/salonluxe/api/internal/platform/firestore"
	"github.com/salonluxe/api/internal/repositories"
)

const (
	ordersCollection = "orders"

	// Placement holds the customer's checkout request, so it gets a tighter
	// budget than the platform default and a few extra contention retries.
	placeTxTimeout  = 10 * time.Second
	placeTxAttempts = 8
)

// OrderRepository persists orders and decrements product stock in one transaction.
type OrderRepository struct {
	provider *pfirestore.Provider
	orders   *pfirestore.BaseRepository[orderDocument]
	products *pfirestore.BaseRepository[productDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	orders := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil)
	products := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil)
	return &OrderRepository{provider: provider, orders: orders, products: products}, nil
}

// Place creates the order document and patches product stock atomically.
// Stock is checked against the live documents inside the transaction, so a
// rejection for any line leaves every product untouched. Price, discount, and
// title snapshots are taken from the same reads that validated stock.
func (r *OrderRepository) Place(ctx context.Context, req repositories.PlaceOrderRequest) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return domain.Order{}, errors.New("order place: order id is required")
	}
	if strings.TrimSpace(req.OrderNumber) == "" {
		return domain.Order{}, errors.New("order place: order number is required")
	}
	if len(req.Demand) == 0 {
		return domain.Order{}, errors.New("order place: at least one line is required")
	}

	now := req.Now.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var placed domain.Order
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		orderRef, err := r.orders.DocumentRef(ctx, req.OrderID)
		if err != nil {
			return err
		}

		// Firestore transactions require all reads before any write, so the
		// stock checks and snapshot reads happen in a first pass.
		type demandLine struct {
			ref      *firestore.DocumentRef
			product  productDocument
			quantity int
		}
		lines := make([]demandLine, 0, len(req.Demand))
		for _, demand := range req.Demand {
			productID := strings.TrimSpace(demand.ProductID)
			if productID == "" {
				return repositories.NewOrderError(repositories.OrderErrorProductNotFound, "order place: product id is required", nil)
			}
			if demand.Quantity <= 0 {
				return fmt.Errorf("order place: quantity for %s must be > 0", productID)
			}

			productRef, err := r.products.DocumentRef(ctx, productID)
			if err != nil {
				return err
			}
			snap, err := tx.Get(productRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return repositories.NewOrderError(repositories.OrderErrorProductNotFound, fmt.Sprintf("product %s not found", productID), err)
				}
				return err
			}
			doc, err := r.products.Decode(ctx, snap)
			if err != nil {
				return fmt.Errorf("decode product %s: %w", productID, err)
			}
			if doc.Data.Stock < demand.Quantity {
				return repositories.NewOrderError(repositories.OrderErrorInsufficientStock, fmt.Sprintf("insufficient stock for %q", doc.Data.Title), nil)
			}
			lines = append(lines, demandLine{ref: productRef, product: doc.Data, quantity: demand.Quantity})
		}

		items := make([]orderLineDocument, 0, len(lines))
		totals := domain.OrderTotals{}
		for _, line := range lines {
			finalUnitPrice := domain.FinalUnitPrice(line.product.Price, line.product.DiscountPercent)
			lineTotal := domain.LineTotal(finalUnitPrice, line.quantity)
			items = append(items, orderLineDocument{
				ProductRef:      line.ref.ID,
				Title:           line.product.Title,
				Quantity:        line.quantity,
				UnitPrice:       line.product.Price,
				DiscountPercent: line.product.DiscountPercent,
				FinalUnitPrice:  finalUnitPrice,
				LineTotal:       lineTotal,
			})
			totals.TotalItems += line.quantity
			totals.TotalAmount += lineTotal

			if err := tx.Update(line.ref, []firestore.Update{
				{Path: "stock", Value: line.product.Stock - line.quantity},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}

		orderDoc := orderDocument{
			OrderNumber:      req.OrderNumber,
			Status:           string(domain.OrderStatusPending),
			Customer:         newOrderCustomerDocument(req.Customer),
			Items:            items,
			TotalItems:       totals.TotalItems,
			TotalAmount:      totals.TotalAmount,
			LegacyProductRef: req.LegacyProductRef,
			CreatedAt:        now,
		}
		if err := tx.Create(orderRef, orderDoc); err != nil {
			return err
		}

		placed = orderDoc.toDomain(req.OrderID)
		return nil
	}, pfirestore.WithTxTimeout(placeTxTimeout), pfirestore.WithTxAttempts(placeTxAttempts))
	if err != nil {
		return domain.Order{}, wrapOrderError("orders.place", err)
	}
	return placed, nil
}

// List returns every order, oldest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	if r == nil || r.orders == nil {
		return nil, errors.New("order repository not initialised")
	}

	docs, err := r.orders.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.OrderBy("createdAt", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data.toDomain(doc.ID))
	}
	return orders, nil
}

// Helper structures ---------------------------------------------------------

type orderDocument struct {
	OrderNumber      string                `firestore:"orderNumber"`
	Status           string                `firestore:"status"`
	Customer         orderCustomerDocument `firestore:"customer"`
	Items            []orderLineDocument   `firestore:"items"`
	TotalItems       int                   `firestore:"totalItems"`
	TotalAmount      int64                 `firestore:"totalAmount"`
	LegacyProductRef *string               `firestore:"productRef,omitempty"`
	CreatedAt        time.Time             `firestore:"createdAt"`
}

type orderCustomerDocument struct {
	FirstName   string  `firestore:"firstName"`
	LastName    string  `firestore:"lastName"`
	Email       *string `firestore:"email,omitempty"`
	Street      string  `firestore:"street"`
	HouseNumber string  `firestore:"houseNumber"`
	PostalCode  string  `firestore:"postalCode"`
	City        string  `firestore:"city"`
	Phone       string  `firestore:"phone"`
	Note        *string `firestore:"note,omitempty"`
}

type orderLineDocument struct {
	ProductRef      string `firestore:"productRef"`
	Title           string `firestore:"title"`
	Quantity        int    `firestore:"quantity"`
	UnitPrice       int64  `firestore:"unitPrice"`
	DiscountPercent int    `firestore:"discountPercent"`
	FinalUnitPrice  int64  `firestore:"finalUnitPrice"`
	LineTotal       int64  `firestore:"lineTotal"`
}

func newOrderCustomerDocument(customer domain.Customer) orderCustomerDocument {
	return orderCustomerDocument{
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		Street:      customer.Street,
		HouseNumber: customer.HouseNumber,
		PostalCode:  customer.PostalCode,
		City:        customer.City,
		Phone:       customer.Phone,
		Note:        customer.Note,
	}
}

func (d orderCustomerDocument) toDomain() domain.Customer {
	return domain.Customer{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Street:      d.Street,
		HouseNumber: d.HouseNumber,
		PostalCode:  d.PostalCode,
		City:        d.City,
		Phone:       d.Phone,
		Note:        d.Note,
	}
}

func (d orderDocument) toDomain(id string) domain.Order {
	items := make([]domain.OrderLine, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderLine{
			ProductRef:      item.ProductRef,
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			FinalUnitPrice:  item.FinalUnitPrice,
			LineTotal:       item.LineTotal,
		})
	}
	return domain.Order{
		ID:          id,
		OrderNumber: d.OrderNumber,
		Status:      domain.OrderStatus(d.Status),
		Customer:    d.Customer.toDomain(),
		Items:       items,
		Totals: domain.OrderTotals{
			TotalItems:  d.TotalItems,
			TotalAmount: d.TotalAmount,
		},
		LegacyProductRef: d.LegacyProductRef,
		CreatedAt:        d.CreatedAt,
	}
}

func wrapOrderError(op string, err error) error {
	if err == nil {
		return nil
	}
	var orderErr *repositories.OrderError
	if errors.As(err, &orderErr) {
		if orderErr.Op == "" {
			orderErr.Op = op
		}
		return orderErr
	}
	return pfirestore.WrapError(op, err)
}
