// Package orders serves the read-only order history surface. Reads take no
// transaction locks; the store's snapshot-replace guarantees they never see
// a torn write.
package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

// Service exposes order history queries.
type Service interface {
	History(ctx context.Context, userID string) ([]models.Order, error)
	Detail(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*models.Order, error)
}

type service struct {
	store *collections.Store
}

// NewService builds the orders query service.
func NewService(store *collections.Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	return &service{store: store}, nil
}

// History lists the user's orders, newest first.
func (s *service) History(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := collections.Load[models.Order](s.store, collections.Orders)
	if err != nil {
		return nil, err
	}

	mine := make([]models.Order, 0)
	for _, order := range orders {
		if order.UserID == userID {
			mine = append(mine, order)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

// Detail returns one order. Only the owner or an admin may view it.
func (s *service) Detail(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*models.Order, error) {
	orders, err := collections.Load[models.Order](s.store, collections.Orders)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		if orders[i].UserID != requesterID && !requesterIsAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
		}
		return &orders[i], nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}
