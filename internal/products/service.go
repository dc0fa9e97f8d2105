// Package products owns the catalog and its stock units. Admin mutations
// run under the same collection locks as purchases so a catalog change can
// never interleave with an in-flight order.
package products

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solystore/pointshop-backend/internal/locks"
	"github.com/solystore/pointshop-backend/internal/stock"
	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

// ProductWithStock is a catalog row annotated with its available unit count.
type ProductWithStock struct {
	models.Product
	Stock int `json:"stock"`
}

// ProductDetail additionally carries the raw stock units. Admin surface.
type ProductDetail struct {
	models.Product
	Stock  int                `json:"stock"`
	Stocks []models.StockUnit `json:"stocks"`
}

// CreateProductInput captures the data required to add a catalog entry.
type CreateProductInput struct {
	Name     string
	ImageURL string
	Price    int
	Status   models.ProductStatus
}

// UpdateProductInput carries partial catalog updates; nil fields are left
// untouched.
type UpdateProductInput struct {
	Name     *string
	ImageURL *string
	Price    *int
	Status   *models.ProductStatus
}

// Service exposes catalog queries and admin mutations.
type Service interface {
	List(ctx context.Context) ([]ProductWithStock, error)
	Get(ctx context.Context, productID string) (*ProductWithStock, error)
	GetWithStocks(ctx context.Context, productID string) (*ProductDetail, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, productID string, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
	AddStock(ctx context.Context, productID, payload string) (*models.StockUnit, error)
	ListStock(ctx context.Context, productID string) ([]models.StockUnit, error)
	DeleteStock(ctx context.Context, stockID string) error
}

type service struct {
	store *collections.Store
	locks *locks.Manager
	now   func() time.Time
}

// NewService builds the catalog service.
func NewService(store *collections.Store, lockManager *locks.Manager) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	if lockManager == nil {
		return nil, fmt.Errorf("lock manager required")
	}
	return &service{store: store, locks: lockManager, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]ProductWithStock, error) {
	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return nil, err
	}
	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return nil, err
	}

	out := make([]ProductWithStock, 0, len(products))
	for _, product := range products {
		out = append(out, ProductWithStock{
			Product: product,
			Stock:   stock.CountAvailable(stocks, product.ID),
		})
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, productID string) (*ProductWithStock, error) {
	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return nil, err
	}
	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		if product.ID == productID {
			return &ProductWithStock{
				Product: product,
				Stock:   stock.CountAvailable(stocks, productID),
			}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) GetWithStocks(ctx context.Context, productID string) (*ProductDetail, error) {
	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return nil, err
	}
	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		if product.ID != productID {
			continue
		}
		units := make([]models.StockUnit, 0)
		for _, unit := range stocks {
			if unit.ProductID == productID {
				units = append(units, unit)
			}
		}
		return &ProductDetail{
			Product: product,
			Stock:   stock.CountAvailable(stocks, productID),
			Stocks:  units,
		}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.ImageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}
	if input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	status := input.Status
	if status != models.ProductUnavailable {
		status = models.ProductAvailable
	}

	release, err := s.locks.Acquire(ctx, collections.Products)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ID:        uuid.NewString(),
		Name:      input.Name,
		ImageURL:  input.ImageURL,
		Price:     input.Price,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	products = append(products, product)

	if err := collections.Replace(s.store, collections.Products, products); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) Update(ctx context.Context, productID string, input UpdateProductInput) (*models.Product, error) {
	if input.Price != nil && *input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Status != nil && *input.Status != models.ProductAvailable && *input.Status != models.ProductUnavailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	release, err := s.locks.Acquire(ctx, collections.Products)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range products {
		if products[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if input.Name != nil {
		products[idx].Name = *input.Name
	}
	if input.ImageURL != nil {
		products[idx].ImageURL = *input.ImageURL
	}
	if input.Price != nil {
		products[idx].Price = *input.Price
	}
	if input.Status != nil {
		products[idx].Status = *input.Status
	}

	if err := collections.Replace(s.store, collections.Products, products); err != nil {
		return nil, err
	}
	return &products[idx], nil
}

// Delete removes the product and every stock unit attached to it. Holds the
// purchase lock scope so no order can allocate from the doomed stock.
func (s *service) Delete(ctx context.Context, productID string) error {
	release, err := s.locks.Acquire(ctx, collections.Products, collections.Stocks)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return err
	}
	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return err
	}

	idx := -1
	for i := range products {
		if products[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	products = append(products[:idx], products[idx+1:]...)
	remaining := make([]models.StockUnit, 0, len(stocks))
	for _, unit := range stocks {
		if unit.ProductID != productID {
			remaining = append(remaining, unit)
		}
	}

	if err := collections.Replace(s.store, collections.Products, products); err != nil {
		return err
	}
	return collections.Replace(s.store, collections.Stocks, remaining)
}

func (s *service) AddStock(ctx context.Context, productID, payload string) (*models.StockUnit, error) {
	if payload == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock payload is required")
	}

	release, err := s.locks.Acquire(ctx, collections.Products, collections.Stocks)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	products, err := collections.Load[models.Product](s.store, collections.Products)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range products {
		if products[i].ID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return nil, err
	}

	unit := models.StockUnit{
		ID:        uuid.NewString(),
		ProductID: productID,
		Payload:   payload,
		Status:    models.StockAvailable,
		CreatedAt: s.now().UTC(),
	}
	stocks = append(stocks, unit)

	if err := collections.Replace(s.store, collections.Stocks, stocks); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (s *service) ListStock(ctx context.Context, productID string) ([]models.StockUnit, error) {
	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return nil, err
	}

	units := make([]models.StockUnit, 0)
	for _, unit := range stocks {
		if unit.ProductID == productID {
			units = append(units, unit)
		}
	}
	return units, nil
}

func (s *service) DeleteStock(ctx context.Context, stockID string) error {
	release, err := s.locks.Acquire(ctx, collections.Stocks)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	stocks, err := collections.Load[models.StockUnit](s.store, collections.Stocks)
	if err != nil {
		return err
	}

	idx := -1
	for i := range stocks {
		if stocks[i].ID == stockID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock unit not found")
	}

	stocks = append(stocks[:idx], stocks[idx+1:]...)
	return collections.Replace(s.store, collections.Stocks, stocks)
}
