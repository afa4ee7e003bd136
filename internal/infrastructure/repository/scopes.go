package repository

import (
	"context"

	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/pagination"
	"gorm.io/gorm"
)

type ctxKey string

// txKey is the context key for the open *gorm.DB transaction
const txKey ctxKey = "gorm_tx"

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor that stores the open transaction in the context
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// conn returns the transaction carried by ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Paginate returns a GORM scope applying offset and limit
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			return db
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// NewRepositories wires every GORM repository around one connection
func NewRepositories(db *gorm.DB) *domainRepo.Repositories {
	return &domainRepo.Repositories{
		Products:      NewProductRepository(db),
		Orders:        NewOrderRepository(db),
		KitchenOrders: NewKitchenOrderRepository(db),
		StockReceipts: NewStockReceiptRepository(db),
		Packages:      NewTreatmentPackageRepository(db),
		Tables:        NewTableRepository(db),
		Customers:     NewCustomerRepository(db),
		Idempotency:   NewIdempotencyRepository(db),
		Transactor:    NewTransactor(db),
	}
}
