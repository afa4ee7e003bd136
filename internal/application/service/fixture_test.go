package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/memory"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *capturePublisher) Publish(ev event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) OfType(t event.Type) []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	ctx       context.Context
	clock     *testClock
	events    *capturePublisher
	repos     *repository.Repositories
	stock     *StockService
	kitchen   *KitchenService
	packages  *PackageService
	orders    *OrderService
	catalogue *CatalogueService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)}
	store, err := memory.New(logger.NewNop(), memory.WithClock(clock.Now))
	require.NoError(t, err)

	repos := store.Repositories()
	events := &capturePublisher{}
	rt := Runtime{Tx: repos.Transactor, Events: events, Log: logger.NewNop(), Now: clock.Now}

	stock := NewStockService(rt, repos.Products, repos.StockReceipts)
	kitchen := NewKitchenService(rt, repos.KitchenOrders, repos.Orders, repos.Tables)
	packages := NewPackageService(rt, repos.Packages, repos.Products)
	return &fixture{
		ctx:       context.Background(),
		clock:     clock,
		events:    events,
		repos:     repos,
		stock:     stock,
		kitchen:   kitchen,
		packages:  packages,
		orders:    NewOrderService(rt, repos, stock, kitchen, packages),
		catalogue: NewCatalogueService(rt, repos),
	}
}

// product creates a catalogue item and brings its stock to qty through a stock-in receipt
func (f *fixture) product(t *testing.T, name string, kind enum.ProductType, price int64, qty int) *entity.Product {
	t.Helper()
	p, err := f.catalogue.CreateProduct(f.ctx, &ProductInput{Name: name, Price: price, ProductType: kind})
	require.NoError(t, err)
	if qty > 0 {
		_, err := f.stock.CreateStockInReceipt(f.ctx, &StockReceiptInput{
			Items: []StockReceiptLineInput{{ProductID: p.ID, Quantity: qty, UnitPrice: price}},
		})
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.repos.Products.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) table(t *testing.T, name string) *entity.Table {
	t.Helper()
	table, err := f.catalogue.CreateTable(f.ctx, name, 4)
	require.NoError(t, err)
	return table
}

func cartItem(p *entity.Product, qty int) entity.CartItem {
	return entity.CartItem{
		ID:          p.ID.String(),
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		ProductType: p.ProductType,
		Quantity:    qty,
	}
}
