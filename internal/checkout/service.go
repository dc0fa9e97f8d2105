// Package checkout coordinates the purchase transaction: verify balance,
// reserve stock, debit points, and append the order record, atomically
// with respect to every other transaction over the same collections.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/solystore/pointshop-backend/internal/ledger"
	"github.com/solystore/pointshop-backend/internal/locks"
	"github.com/solystore/pointshop-backend/internal/stock"
	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
	"github.com/solystore/pointshop-backend/pkg/logger"
	"github.com/solystore/pointshop-backend/pkg/metrics"
)

const flowOrder = "order"

// Service executes purchase transactions.
type Service interface {
	PlaceOrder(ctx context.Context, userID, productID string, quantity int) (*models.Order, error)
}

// Storage is the slice of the collection store the purchase transaction
// touches. *collections.Store satisfies it.
type Storage interface {
	LoadUsers() ([]models.User, error)
	LoadProducts() ([]models.Product, error)
	LoadStocks() ([]models.StockUnit, error)
	LoadOrders() ([]models.Order, error)
	ReplaceUsers([]models.User) error
	ReplaceStocks([]models.StockUnit) error
	ReplaceOrders([]models.Order) error
}

type service struct {
	store   Storage
	locks   *locks.Manager
	metrics *metrics.TransactionMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(store Storage, lockManager *locks.Manager, txMetrics *metrics.TransactionMetrics, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection storage required")
	}
	if lockManager == nil {
		return nil, fmt.Errorf("lock manager required")
	}
	return &service{
		store:   store,
		locks:   lockManager,
		metrics: txMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// PlaceOrder runs the purchase transaction for the authenticated user.
// Validation failures abort before anything is persisted; on success the
// users, stocks, and order history collections are replaced together under
// the transaction's lock scope.
func (s *service) PlaceOrder(ctx context.Context, userID, productID string, quantity int) (*models.Order, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	start := s.now()
	order, err := s.run(ctx, userID, productID, quantity)
	s.metrics.ObserveDuration(flowOrder, s.now().Sub(start))
	if err != nil {
		s.metrics.IncAbort(flowOrder, string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncCommit(flowOrder)
	return order, nil
}

func (s *service) run(ctx context.Context, userID, productID string, quantity int) (*models.Order, error) {
	release, err := s.locks.Acquire(ctx, collections.Users, collections.Products, collections.Stocks, collections.Orders)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	users, err := s.store.LoadUsers()
	if err != nil {
		return nil, err
	}
	products, err := s.store.LoadProducts()
	if err != nil {
		return nil, err
	}
	stocks, err := s.store.LoadStocks()
	if err != nil {
		return nil, err
	}
	orders, err := s.store.LoadOrders()
	if err != nil {
		return nil, err
	}

	product := findProduct(products, productID)
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.Status != models.ProductAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product unavailable")
	}
	if available := stock.CountAvailable(stocks, productID); available < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"available": available, "requested": quantity})
	}

	user := findUser(users, userID)
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	total := product.Price * quantity
	if err := ledger.Debit(users, userID, total); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reserved, err := stock.Reserve(stocks, productID, userID, quantity, now)
	if err != nil {
		return nil, err
	}

	refs := make([]models.OrderStockRef, 0, len(reserved))
	for _, unit := range reserved {
		refs = append(refs, models.OrderStockRef{ID: unit.ID, Payload: unit.Payload})
	}

	order := models.Order{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Username:    user.Username,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		StockRefs:   refs,
		Total:       total,
		CreatedAt:   now,
	}
	orders = append(orders, order)

	if err := s.persist(ctx, users, stocks, orders); err != nil {
		return nil, err
	}
	return &order, nil
}

// persist replaces the touched collections in a fixed order: stocks before
// users, so a mid-persist failure strands a consumed unit rather than a
// debited balance. A failure midway cannot be rolled back; the collections
// already written are logged for manual reconciliation and the whole
// transaction reports store unavailability.
func (s *service) persist(ctx context.Context, users []models.User, stocks []models.StockUnit, orders []models.Order) error {
	var err error
	persisted := make([]string, 0, 3)

	if perr := s.store.ReplaceStocks(stocks); perr != nil {
		err = multierr.Append(err, perr)
	} else {
		persisted = append(persisted, collections.Stocks)
	}
	if err == nil {
		if perr := s.store.ReplaceUsers(users); perr != nil {
			err = multierr.Append(err, perr)
		} else {
			persisted = append(persisted, collections.Users)
		}
	}
	if err == nil {
		if perr := s.store.ReplaceOrders(orders); perr != nil {
			err = multierr.Append(err, perr)
		} else {
			persisted = append(persisted, collections.Orders)
		}
	}

	if err != nil {
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{
				"flow":      flowOrder,
				"persisted": persisted,
			})
			s.logg.Error(ctx, "transaction persist failed, manual reconciliation required", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}
	return nil
}

func findProduct(products []models.Product, id string) *models.Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}

func findUser(users []models.User, id string) *models.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
