package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDForUpdate reads a product and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// Update writes catalogue fields. Stock is never written here.
	Update(ctx context.Context, product *entity.Product) error
	// SetStock writes the stock column. Only the stock ledger calls it.
	SetStock(ctx context.Context, id uuid.UUID, stock int) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination  *pagination.PaginationParams
	Search      string
	ProductType *enum.ProductType
}
