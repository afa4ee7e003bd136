package repository

import "context"

// Transactor runs fn as one atomic unit against the backing store.
// Repositories called with the ctx passed to fn take part in the transaction.
// A nested call joins the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories bundles every repository of one storage engine
type Repositories struct {
	Products      ProductRepository
	Orders        OrderRepository
	KitchenOrders KitchenOrderRepository
	StockReceipts StockReceiptRepository
	Packages      TreatmentPackageRepository
	Tables        TableRepository
	Customers     CustomerRepository
	Idempotency   IdempotencyRepository
	Transactor    Transactor
}
