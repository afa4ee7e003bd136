package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestOrderRepository_LastNumberByPrefix(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "order_number" FROM "orders" WHERE order_number LIKE \$1 ORDER BY order_number DESC LIMIT 1`).
		WithArgs("HD070324%").
		WillReturnRows(sqlmock.NewRows([]string{"order_number"}).AddRow("HD0703240005"))

	last, err := NewOrderRepository(db).LastNumberByPrefix(context.Background(), "HD070324")
	require.NoError(t, err)
	assert.Equal(t, "HD0703240005", last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockReceiptRepository_LastNumberByPrefixEmpty(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "receipt_number" FROM "stock_receipts" WHERE kind = \$1 AND receipt_number LIKE \$2 ORDER BY receipt_number DESC LIMIT 1`).
		WithArgs(sqlmock.AnyArg(), "IN-20240307-%").
		WillReturnRows(sqlmock.NewRows([]string{"receipt_number"}))

	last, err := NewStockReceiptRepository(db).LastNumberByPrefix(context.Background(), enum.ReceiptKindIn, "IN-20240307-")
	require.NoError(t, err)
	assert.Empty(t, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKitchenOrderRepository_DeleteByStatus(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM "kitchen_orders" WHERE status = \$1`).
		WithArgs(int64(enum.KitchenStatusServed)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewKitchenOrderRepository(db).DeleteByStatus(context.Background(), enum.KitchenStatusServed)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_CommitsAndJoins(t *testing.T) {
	db, mock := newMockDB(t)
	repos := NewRepositories(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock", "product_type"}).AddRow(id.String(), "Tea", 5, 0))
	mock.ExpectExec(`UPDATE "products" SET "stock"=\$1`).
		WithArgs(3, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repos.Transactor.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			p, err := repos.Products.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return repos.Products.SetStock(ctx, p.ID, p.Stock-2)
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewTransactor(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := NewProductRepository(db).GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}
