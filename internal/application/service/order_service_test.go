package service

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_Coffee(t *testing.T) {
	f := newFixture(t)
	coffee := f.product(t, "Coffee", enum.ProductTypeProduct, 25000, 10)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:  []entity.CartItem{cartItem(coffee, 2)},
		Status: enum.OrderStatusCompleted,
	})
	require.NoError(t, err)

	assert.Equal(t, "HD0703240001", order.OrderNumber)
	assert.Equal(t, int64(50000), order.Subtotal)
	assert.Equal(t, int64(0), order.Discount)
	assert.Equal(t, int64(50000), order.Total)
	require.Len(t, order.PaymentHistory, 1)
	assert.Equal(t, entity.PaymentMethodCash, order.PaymentHistory[0].Method)
	assert.Equal(t, int64(50000), order.PaymentHistory[0].ReceivedAmount)
	assert.Equal(t, int64(0), order.PaymentHistory[0].ChangeAmount)
	assert.Equal(t, 8, f.stockOf(t, coffee.ID))
}

func TestCreateOrder_Discounts(t *testing.T) {
	f := newFixture(t)
	tea := f.product(t, "Tea", enum.ProductTypeProduct, 10000, 10)

	item := cartItem(tea, 3)
	item.Discount = 1000
	received := int64(30000)
	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:          []entity.CartItem{item},
		OrderDiscount:  2000,
		Status:         enum.OrderStatusCompleted,
		PaymentMethod:  "card",
		ReceivedAmount: &received,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(30000), order.Subtotal)
	assert.Equal(t, int64(5000), order.Discount)
	assert.Equal(t, int64(25000), order.Total)
	assert.Equal(t, order.Subtotal-order.Discount, order.Total)
	assert.Equal(t, "card", order.PaymentHistory[0].Method)
	assert.Equal(t, int64(5000), order.PaymentHistory[0].ChangeAmount)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{Status: enum.OrderStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.Total)
	assert.Len(t, order.PaymentHistory, 1)
}

func TestCreateOrder_PendingDoesNotTouchStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Juice", enum.ProductTypeProduct, 3000, 2)

	_, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:  []entity.CartItem{cartItem(p, 5)},
		Status: enum.OrderStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.stockOf(t, p.ID))
}

func TestCreateOrder_UnlimitedKindsNeverDecremented(t *testing.T) {
	f := newFixture(t)
	kinds := []enum.ProductType{enum.ProductTypeService, enum.ProductTypeCombo, enum.ProductTypeFood}

	for _, kind := range kinds {
		p := f.product(t, kind.String(), kind, 1000, 0)
		_, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
			Items:  []entity.CartItem{cartItem(p, 4)},
			Status: enum.OrderStatusCompleted,
		})
		require.NoError(t, err, kind.String())
		assert.Equal(t, 0, f.stockOf(t, p.ID), kind.String())
	}
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", enum.ProductTypeProduct, 100, 10)
	b := f.product(t, "B", enum.ProductTypeProduct, 100, 1)
	table := f.table(t, "Table 1")

	_, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:         []entity.CartItem{cartItem(a, 2), cartItem(b, 2)},
		Status:        enum.OrderStatusCompleted,
		CustomerName:  "Jane",
		CustomerPhone: "0700000001",
		TableID:       &table.ID,
	})
	shortfall, ok := apperror.IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, b.ID.String(), shortfall.ProductID)

	assert.Equal(t, 10, f.stockOf(t, a.ID))
	assert.Equal(t, 1, f.stockOf(t, b.ID))

	orders, err := f.orders.ListOrders(f.ctx, &repository.OrderFilterParams{})
	require.NoError(t, err)
	assert.Empty(t, orders.Items)

	customer, err := f.repos.Customers.GetByPhone(f.ctx, "0700000001")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestCreateOrder_DailySequence(t *testing.T) {
	f := newFixture(t)
	create := func() string {
		order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{Status: enum.OrderStatusPending})
		require.NoError(t, err)
		return order.OrderNumber
	}

	f.clock.Advance(-24 * time.Hour)
	assert.Equal(t, "HD0603240001", create())
	assert.Equal(t, "HD0603240002", create())

	f.clock.Advance(24 * time.Hour)
	assert.Equal(t, "HD0703240001", create())
	f.clock.Advance(time.Minute)
	assert.Equal(t, "HD0703240002", create())
	assert.Equal(t, "HD0703240003", create())

	f.clock.Advance(24 * time.Hour)
	assert.Equal(t, "HD0803240001", create())
}

func TestCreateOrder_BackDatedKeepsSequence(t *testing.T) {
	f := newFixture(t)
	yesterday := f.clock.Now().Add(-24 * time.Hour)

	backDated, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{Date: &yesterday})
	require.NoError(t, err)
	assert.Equal(t, "HD0703240001", backDated.OrderNumber)
	assert.True(t, backDated.Date.Equal(yesterday))

	next, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, "HD0703240002", next.OrderNumber)
}

func TestCreateOrder_CustomerAutoCreate(t *testing.T) {
	f := newFixture(t)

	first, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{CustomerName: "Amina", CustomerPhone: "0711"})
	require.NoError(t, err)
	require.NotNil(t, first.CustomerID)

	second, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{CustomerName: "Amina", CustomerPhone: "0711"})
	require.NoError(t, err)
	assert.Equal(t, *first.CustomerID, *second.CustomerID)

	customers, err := f.catalogue.ListCustomers(f.ctx, nil, "")
	require.NoError(t, err)
	assert.Len(t, customers.Items, 1)

	_, err = f.orders.CreateOrder(f.ctx, &CreateOrderInput{CustomerID: ptr(uuid.New())})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateOrder_TreatmentIssuesPackages(t *testing.T) {
	f := newFixture(t)
	p, err := f.catalogue.CreateProduct(f.ctx, &ProductInput{
		Name:              "Facial course",
		Price:             500000,
		ProductType:       enum.ProductTypeTreatment,
		TreatmentSessions: 10,
	})
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:         []entity.CartItem{cartItem(p, 2)},
		Status:        enum.OrderStatusCompleted,
		CustomerName:  "Lina",
		CustomerPhone: "0722",
	})
	require.NoError(t, err)

	packages, err := f.packages.ListCustomerPackages(f.ctx, *order.CustomerID, false)
	require.NoError(t, err)
	require.Len(t, packages, 2)
	assert.NotEqual(t, packages[0].ID, packages[1].ID)
	for _, pkg := range packages {
		assert.Equal(t, 10, pkg.TotalSessions)
		assert.Equal(t, 10, pkg.RemainingSessions)
		require.NotNil(t, pkg.UsedSessionNumbers)
		assert.Empty(t, pkg.UsedSessionNumbers)
		assert.True(t, pkg.IsActive)
		assert.Equal(t, order.ID, *pkg.OrderID)
		require.Len(t, pkg.Sessions, 10)
		assert.Equal(t, 10, pkg.Sessions[9].SessionNumber)
		assert.Equal(t, p.ID, pkg.Sessions[0].Items[0].ProductID)

		body, err := json.Marshal(pkg)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"used_session_numbers":[]`)
	}
}

func TestCreateOrder_TreatmentWithSessionPlan(t *testing.T) {
	f := newFixture(t)
	wash := f.product(t, "Wash", enum.ProductTypeService, 0, 0)
	p, err := f.catalogue.CreateProduct(f.ctx, &ProductInput{
		Name:        "Hair spa",
		ProductType: enum.ProductTypeTreatment,
		SessionPlan: []entity.TreatmentSession{
			{SessionNumber: 1, Items: []entity.TreatmentSessionItem{{ProductID: wash.ID, Name: "Wash", Quantity: 1}}},
			{SessionNumber: 2, Items: []entity.TreatmentSessionItem{{ProductID: wash.ID, Name: "Wash", Quantity: 1}}},
		},
	})
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:         []entity.CartItem{cartItem(p, 1)},
		CustomerName:  "Mo",
		CustomerPhone: "0733",
	})
	require.NoError(t, err)

	pkg, err := f.packages.GetPackageForService(f.ctx, *order.CustomerID, wash.ID)
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, 2, pkg.TotalSessions)
}

func TestCreateOrder_TreatmentWithoutCustomerIssuesNoPackage(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Peel", enum.ProductTypeTreatment, 1000, 0)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{Items: []entity.CartItem{cartItem(p, 1)}})
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
	assert.Equal(t, int64(1000), order.Total)

	stored, err := f.orders.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, p.ID, stored.Items[0].ProductID)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Soap", enum.ProductTypeProduct, 100, 1)

	item := cartItem(p, -1)
	_, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{Items: []entity.CartItem{item}})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	_, err = f.orders.CreateOrder(f.ctx, &CreateOrderInput{Status: enum.OrderStatusCancelled})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	unknown := cartItem(p, 1)
	unknown.ProductID = uuid.New()
	_, err = f.orders.CreateOrder(f.ctx, &CreateOrderInput{Items: []entity.CartItem{unknown}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateOrder_OccupiesTable(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "Table 3")

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{TableID: &table.ID})
	require.NoError(t, err)

	stored, err := f.repos.Tables.GetByID(f.ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TableStatusOccupied, stored.Status)
	assert.Equal(t, order.ID, *stored.CurrentOrderID)
}

func TestSettleOrder(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Burger", enum.ProductTypeProduct, 15000, 5)
	table := f.table(t, "Table 1")

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:   []entity.CartItem{cartItem(p, 2)},
		TableID: &table.ID,
	})
	require.NoError(t, err)
	ko, err := f.kitchen.CreateKitchenOrder(f.ctx, order.ID, order.Items)
	require.NoError(t, err)

	received := int64(40000)
	settled, err := f.orders.SettleOrder(f.ctx, order.ID, &PaymentInput{Method: "mpesa", ReceivedAmount: &received})
	require.NoError(t, err)

	assert.Equal(t, enum.OrderStatusCompleted, settled.Status)
	require.Len(t, settled.PaymentHistory, 2)
	assert.Equal(t, "mpesa", settled.PaymentHistory[1].Method)
	assert.Equal(t, int64(10000), settled.PaymentHistory[1].ChangeAmount)
	assert.Equal(t, 3, f.stockOf(t, p.ID))

	served, err := f.kitchen.GetKitchenOrder(f.ctx, ko.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.KitchenStatusServed, served.Status)
	assert.NotNil(t, served.ServedAt)

	freed, err := f.repos.Tables.GetByID(f.ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TableStatusAvailable, freed.Status)
	assert.Nil(t, freed.CurrentOrderID)

	_, err = f.orders.SettleOrder(f.ctx, order.ID, &PaymentInput{})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCancelOrder_RestocksCompleted(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cake", enum.ProductTypeProduct, 5000, 4)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:  []entity.CartItem{cartItem(p, 3)},
		Status: enum.OrderStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.stockOf(t, p.ID))

	cancelled, err := f.orders.CancelOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 4, f.stockOf(t, p.ID))

	_, err = f.orders.CancelOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 4, f.stockOf(t, p.ID))
}

func TestUpdateOrder_MergesWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bread", enum.ProductTypeProduct, 2000, 5)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:  []entity.CartItem{cartItem(p, 1)},
		Status: enum.OrderStatusCompleted,
	})
	require.NoError(t, err)

	items := []entity.CartItem{cartItem(p, 3)}
	note := "no crust"
	updated, err := f.orders.UpdateOrder(f.ctx, order.ID, &UpdateOrderInput{Items: &items, Note: &note})
	require.NoError(t, err)

	assert.Equal(t, int64(6000), updated.Total)
	assert.Equal(t, "no crust", updated.Note)
	assert.Equal(t, order.OrderNumber, updated.OrderNumber)
	assert.Equal(t, 4, f.stockOf(t, p.ID))
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Milk", enum.ProductTypeProduct, 2000, 5)

	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:  []entity.CartItem{cartItem(p, 2)},
		Status: enum.OrderStatusCompleted,
	})
	require.NoError(t, err)

	require.NoError(t, f.orders.DeleteOrder(f.ctx, order.ID))
	assert.Equal(t, 3, f.stockOf(t, p.ID))

	_, err = f.orders.GetOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, f.orders.DeleteOrder(f.ctx, order.ID), apperror.ErrNotFound)
}

func ptr[T any](v T) *T {
	return &v
}
