package checkout

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solystore/pointshop-backend/internal/locks"
	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
	"github.com/solystore/pointshop-backend/pkg/logger"
	"github.com/solystore/pointshop-backend/pkg/metrics"
)

type fixture struct {
	dir   string
	store *collections.Store
	svc   Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := collections.NewStore(dir)
	require.NoError(t, err)
	svc, err := NewService(store, locks.NewManager(), nil, nil)
	require.NoError(t, err)
	return &fixture{dir: dir, store: store, svc: svc}
}

func (f *fixture) seed(t *testing.T, users []models.User, products []models.Product, stocks []models.StockUnit) {
	t.Helper()
	require.NoError(t, collections.Replace(f.store, collections.Users, users))
	require.NoError(t, collections.Replace(f.store, collections.Products, products))
	require.NoError(t, collections.Replace(f.store, collections.Stocks, stocks))
}

func (f *fixture) readFiles(t *testing.T) map[string][]byte {
	t.Helper()
	out := make(map[string][]byte)
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(f.dir, entry.Name()))
		require.NoError(t, err)
		out[entry.Name()] = raw
	}
	return out
}

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		[]models.User{{ID: "u1", Username: "alice", Points: 120}},
		[]models.Product{{ID: "p1", Name: "game key", Price: 50, Status: models.ProductAvailable}},
		[]models.StockUnit{
			{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable},
			{ID: "s2", ProductID: "p1", Payload: "KEY-2", Status: models.StockAvailable},
			{ID: "s3", ProductID: "p1", Payload: "KEY-3", Status: models.StockAvailable},
		},
	)

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "alice", order.Username)
	assert.Equal(t, "p1", order.ProductID)
	assert.Equal(t, 50, order.UnitPrice)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, 100, order.Total)
	require.Len(t, order.StockRefs, 2)
	assert.Equal(t, "s1", order.StockRefs[0].ID)
	assert.Equal(t, "KEY-1", order.StockRefs[0].Payload)
	assert.Equal(t, "s2", order.StockRefs[1].ID)

	users, err := collections.Load[models.User](f.store, collections.Users)
	require.NoError(t, err)
	assert.Equal(t, 20, users[0].Points)

	stocks, err := collections.Load[models.StockUnit](f.store, collections.Stocks)
	require.NoError(t, err)
	assert.Equal(t, models.StockConsumed, stocks[0].Status)
	assert.Equal(t, "u1", stocks[0].UsedBy)
	assert.NotNil(t, stocks[0].UsedAt)
	assert.Equal(t, models.StockConsumed, stocks[1].Status)
	assert.Equal(t, models.StockAvailable, stocks[2].Status)

	orders, err := collections.Load[models.Order](f.store, collections.Orders)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPlaceOrderInsufficientStockLeavesFilesUntouched(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		[]models.User{{ID: "u1", Username: "alice", Points: 1000}},
		[]models.Product{{ID: "p1", Name: "game key", Price: 50, Status: models.ProductAvailable}},
		[]models.StockUnit{{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable}},
	)
	before := f.readFiles(t)

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "p1", 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.CodeOf(err))

	assert.Equal(t, before, f.readFiles(t))
}

func TestPlaceOrderInsufficientPointsLeavesFilesUntouched(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		[]models.User{{ID: "u1", Username: "alice", Points: 99}},
		[]models.Product{{ID: "p1", Name: "game key", Price: 50, Status: models.ProductAvailable}},
		[]models.StockUnit{
			{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable},
			{ID: "s2", ProductID: "p1", Payload: "KEY-2", Status: models.StockAvailable},
		},
	)
	before := f.readFiles(t)

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "p1", 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientPoints, pkgerrors.CodeOf(err))

	assert.Equal(t, before, f.readFiles(t))
}

func TestPlaceOrderUnavailableProduct(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		[]models.User{{ID: "u1", Username: "alice", Points: 1000}},
		[]models.Product{{ID: "p1", Name: "game key", Price: 50, Status: models.ProductUnavailable}},
		[]models.StockUnit{{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable}},
	)

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "p1", 1)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.seed(t, []models.User{{ID: "u1", Points: 10}}, nil, nil)

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "nope", 1)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "", "p1", 1)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = f.svc.PlaceOrder(context.Background(), "u1", "", 1)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = f.svc.PlaceOrder(context.Background(), "u1", "p1", 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

// Eight buyers race for three units. Exactly three orders commit, every
// committed order holds a distinct unit, and the balance reflects exactly
// the committed purchases.
func TestPlaceOrderConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		[]models.User{{ID: "u1", Username: "alice", Points: 1000}},
		[]models.Product{{ID: "p1", Name: "game key", Price: 50, Status: models.ProductAvailable}},
		[]models.StockUnit{
			{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable},
			{ID: "s2", ProductID: "p1", Payload: "KEY-2", Status: models.StockAvailable},
			{ID: "s3", ProductID: "p1", Payload: "KEY-3", Status: models.StockAvailable},
		},
	)

	const buyers = 8
	results := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.PlaceOrder(context.Background(), "u1", "p1", 1)
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, err := range results {
		if err == nil {
			committed++
			continue
		}
		assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.CodeOf(err))
	}
	assert.Equal(t, 3, committed)

	users, err := collections.Load[models.User](f.store, collections.Users)
	require.NoError(t, err)
	assert.Equal(t, 1000-3*50, users[0].Points)

	stocks, err := collections.Load[models.StockUnit](f.store, collections.Stocks)
	require.NoError(t, err)
	for _, unit := range stocks {
		assert.Equal(t, models.StockConsumed, unit.Status)
		assert.Equal(t, "u1", unit.UsedBy)
	}

	orders, err := collections.Load[models.Order](f.store, collections.Orders)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	seen := make(map[string]bool)
	for _, order := range orders {
		require.Len(t, order.StockRefs, 1)
		assert.False(t, seen[order.StockRefs[0].ID], "unit %s allocated twice", order.StockRefs[0].ID)
		seen[order.StockRefs[0].ID] = true
	}
}

// flakyStorage delegates to a real store but fails the users write, which
// sits in the middle of the checkout persist order.
type flakyStorage struct {
	Storage
	failUsers bool
}

func (f *flakyStorage) ReplaceUsers(users []models.User) error {
	if f.failUsers {
		return fmt.Errorf("disk full")
	}
	return f.Storage.ReplaceUsers(users)
}

func abortCount(t *testing.T, registry *prometheus.Registry, flow, reason string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "transaction_aborts_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["flow"] == flow && labels["reason"] == reason {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestPlaceOrderPersistFailureLogsAndAborts(t *testing.T) {
	store, err := collections.NewStore(t.TempDir())
	require.NoError(t, err)

	var logBuf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logBuf})
	registry := prometheus.NewRegistry()
	txMetrics := metrics.NewTransactionMetrics(registry)

	svc, err := NewService(&flakyStorage{Storage: store, failUsers: true}, locks.NewManager(), txMetrics, logg)
	require.NoError(t, err)

	require.NoError(t, collections.Replace(store, collections.Users, []models.User{
		{ID: "u1", Username: "alice", Points: 120},
	}))
	require.NoError(t, collections.Replace(store, collections.Products, []models.Product{
		{ID: "p1", Name: "game key", Price: 50, Status: models.ProductAvailable},
	}))
	require.NoError(t, collections.Replace(store, collections.Stocks, []models.StockUnit{
		{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable},
	}))

	_, err = svc.PlaceOrder(context.Background(), "u1", "p1", 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))

	// Stocks are written before the failing users write, so the unit is
	// stranded consumed while the balance stays intact.
	stocks, err := collections.Load[models.StockUnit](store, collections.Stocks)
	require.NoError(t, err)
	assert.Equal(t, models.StockConsumed, stocks[0].Status)

	users, err := collections.Load[models.User](store, collections.Users)
	require.NoError(t, err)
	assert.Equal(t, 120, users[0].Points)

	orders, err := collections.Load[models.Order](store, collections.Orders)
	require.NoError(t, err)
	assert.Empty(t, orders)

	logged := logBuf.String()
	assert.Contains(t, logged, "manual reconciliation")
	assert.Contains(t, logged, `"persisted":["stocks"]`)

	assert.Equal(t, float64(1), abortCount(t, registry, "order", "dependency_error"))
}

func TestPlaceOrderTimestampsAreUTC(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		[]models.User{{ID: "u1", Username: "alice", Points: 100}},
		[]models.Product{{ID: "p1", Name: "game key", Price: 50, Status: models.ProductAvailable}},
		[]models.StockUnit{{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable}},
	)

	before := time.Now().UTC()
	order, err := f.svc.PlaceOrder(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)
	after := time.Now().UTC()

	assert.False(t, order.CreatedAt.Before(before))
	assert.False(t, order.CreatedAt.After(after))
	assert.Equal(t, time.UTC, order.CreatedAt.Location())
}
