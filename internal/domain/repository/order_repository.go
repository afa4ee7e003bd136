package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// LastNumberByPrefix returns the highest order number starting with prefix,
	// or "" when there is none
	LastNumberByPrefix(ctx context.Context, prefix string) (string, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.OrderStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// KitchenOrderRepository defines the interface for kitchen ticket data operations
type KitchenOrderRepository interface {
	Create(ctx context.Context, ko *entity.KitchenOrder) error
	GetByID(ctx context.Context, id string) (*entity.KitchenOrder, error)
	Update(ctx context.Context, ko *entity.KitchenOrder) error
	Delete(ctx context.Context, id string) error
	// ListByOrder returns every ticket of an order, oldest first
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.KitchenOrder, error)
	List(ctx context.Context, params *KitchenOrderFilterParams) ([]entity.KitchenOrder, error)
	// DeleteByStatus removes every ticket in status and returns how many went
	DeleteByStatus(ctx context.Context, status enum.KitchenStatus) (int64, error)
}

// KitchenOrderFilterParams contains filtering parameters for kitchen ticket queries
type KitchenOrderFilterParams struct {
	Status  *enum.KitchenStatus
	OrderID *uuid.UUID
}
