package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
}

// TableRepository defines the interface for dining table data operations
type TableRepository interface {
	Create(ctx context.Context, table *entity.Table) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error)
	Update(ctx context.Context, table *entity.Table) error
	List(ctx context.Context) ([]entity.Table, error)
}
