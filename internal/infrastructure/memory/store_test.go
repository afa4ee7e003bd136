package memory

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	store, err := New(logger.NewNop(), WithClock(fixedClock))
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	product := &entity.Product{Name: "Tea", ProductType: enum.ProductTypeProduct}
	require.NoError(t, repos.Products.Create(ctx, product))
	require.NoError(t, repos.Products.SetStock(ctx, product.ID, 5))

	boom := errors.New("boom")
	err = repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repos.Products.SetStock(ctx, product.ID, 1); err != nil {
			return err
		}
		if err := repos.Customers.Create(ctx, &entity.Customer{Name: "A", Phone: "1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	customer, err := repos.Customers.GetByPhone(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestWithinTransaction_RollsBackOnPanic(t *testing.T) {
	store, err := New(logger.NewNop())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			_ = repos.Tables.Create(ctx, &entity.Table{Name: "T1"})
			panic("kaboom")
		})
	})

	tables, err := repos.Tables.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestWithinTransaction_Nested(t *testing.T) {
	store, err := New(logger.NewNop())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	err = repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			return repos.Tables.Create(ctx, &entity.Table{Name: "Inner"})
		})
	})
	require.NoError(t, err)

	tables, err := repos.Tables.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	store, err := New(logger.NewNop())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	ko := &entity.KitchenOrder{
		ID:      "KITCHEN-1",
		OrderID: uuid.New(),
		Items:   []entity.KitchenOrderItem{{CartItem: entity.CartItem{Name: "Soup", Quantity: 1}}},
	}
	require.NoError(t, repos.KitchenOrders.Create(ctx, ko))

	got, err := repos.KitchenOrders.GetByID(ctx, "KITCHEN-1")
	require.NoError(t, err)
	got.Items[0].Name = "changed"
	ko.Items[0].Name = "changed too"

	again, err := repos.KitchenOrders.GetByID(ctx, "KITCHEN-1")
	require.NoError(t, err)
	assert.Equal(t, "Soup", again.Items[0].Name)
}

func TestProductUpdate_NeverWritesStock(t *testing.T) {
	store, err := New(logger.NewNop())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	product := &entity.Product{Name: "Soap"}
	require.NoError(t, repos.Products.Create(ctx, product))
	require.NoError(t, repos.Products.SetStock(ctx, product.ID, 9))

	product.Stock = 100
	product.Name = "Bar soap"
	require.NoError(t, repos.Products.Update(ctx, product))

	got, err := repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bar soap", got.Name)
	assert.Equal(t, 9, got.Stock)
}

func TestDuplicateOrderNumber(t *testing.T) {
	store, err := New(logger.NewNop())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Orders.Create(ctx, &entity.Order{OrderNumber: "HD0703240001"}))
	err = repos.Orders.Create(ctx, &entity.Order{OrderNumber: "HD0703240001"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestReturnedRecordsKeepEmptySlices(t *testing.T) {
	store, err := New(logger.NewNop(), WithClock(fixedClock))
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	pkg := &entity.CustomerTreatmentPackage{
		CustomerID:         uuid.New(),
		TreatmentID:        uuid.New(),
		TotalSessions:      2,
		UsedSessionNumbers: []int{},
		RemainingSessions:  2,
		IsActive:           true,
	}
	require.NoError(t, repos.Packages.Create(ctx, pkg))

	got, err := repos.Packages.GetByID(ctx, pkg.ID)
	require.NoError(t, err)
	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"used_session_numbers":[]`)
}

func TestLastNumberByPrefix(t *testing.T) {
	store, err := New(logger.NewNop(), WithClock(fixedClock))
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	for _, number := range []string{"HD0703240002", "HD0603240009", "HD0703240001"} {
		require.NoError(t, repos.Orders.Create(ctx, &entity.Order{OrderNumber: number}))
	}

	last, err := repos.Orders.LastNumberByPrefix(ctx, "HD070324")
	require.NoError(t, err)
	assert.Equal(t, "HD0703240002", last)

	last, err = repos.Orders.LastNumberByPrefix(ctx, "HD080324")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestSnapshot_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos", "store.json")
	ctx := context.Background()

	store, err := New(logger.NewNop(), WithSnapshotPath(path), WithClock(fixedClock))
	require.NoError(t, err)
	repos := store.Repositories()

	product := &entity.Product{Name: "Coffee", Price: 25000, ProductType: enum.ProductTypeProduct}
	require.NoError(t, repos.Products.Create(ctx, product))
	require.NoError(t, repos.Products.SetStock(ctx, product.ID, 8))
	service := &entity.Product{Name: "Massage", ProductType: enum.ProductTypeService}
	require.NoError(t, repos.Products.Create(ctx, service))
	require.NoError(t, repos.StockReceipts.Create(ctx, &entity.StockReceipt{
		Kind:          enum.ReceiptKindOut,
		ReceiptNumber: "OUT-20240307-001",
		Items:         []entity.StockReceiptItem{{ProductID: product.ID, Quantity: 2}},
	}))

	pkg := &entity.CustomerTreatmentPackage{
		CustomerID:         uuid.New(),
		TreatmentID:        service.ID,
		TotalSessions:      3,
		UsedSessionNumbers: []int{},
		RemainingSessions:  3,
		IsActive:           true,
	}
	require.NoError(t, repos.Packages.Create(ctx, pkg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"products", "orders", "kitchenOrders", "stockInReceipts", "stockOutReceipts", "customerTreatmentPackages", "tables", "customers"} {
		assert.Contains(t, raw, key)
	}

	reloaded, err := New(logger.NewNop(), WithSnapshotPath(path))
	require.NoError(t, err)
	rrepos := reloaded.Repositories()

	got, err := rrepos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Stock)
	assert.Equal(t, int64(25000), got.Price)

	gotService, err := rrepos.Products.GetByID(ctx, service.ID)
	require.NoError(t, err)
	assert.False(t, gotService.StockPolicy().IsTracked())

	last, err := rrepos.StockReceipts.LastNumberByPrefix(ctx, enum.ReceiptKindOut, "OUT-20240307-")
	require.NoError(t, err)
	assert.Equal(t, "OUT-20240307-001", last)

	gotPkg, err := rrepos.Packages.GetByID(ctx, pkg.ID)
	require.NoError(t, err)
	require.NotNil(t, gotPkg)
	require.NotNil(t, gotPkg.UsedSessionNumbers)
	assert.Empty(t, gotPkg.UsedSessionNumbers)
}

func TestSnapshot_MissingFileStartsEmpty(t *testing.T) {
	store, err := New(logger.NewNop(), WithSnapshotPath(filepath.Join(t.TempDir(), "none.json")))
	require.NoError(t, err)

	products, total, err := store.Repositories().Products.List(context.Background(), &domainRepo.ProductFilterParams{})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, total)
}
