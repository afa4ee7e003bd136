package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return conn(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return conn(ctx, r.db).Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Order{}, "id = ?", id).Error
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := conn(ctx, r.db).Model(&entity.Order{})

	if params.Search != "" {
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("date >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("date DESC").
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) LastNumberByPrefix(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := conn(ctx, r.db).Model(&entity.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

type kitchenOrderRepository struct {
	db *gorm.DB
}

// NewKitchenOrderRepository creates a new kitchen ticket repository
func NewKitchenOrderRepository(db *gorm.DB) domainRepo.KitchenOrderRepository {
	return &kitchenOrderRepository{db: db}
}

func (r *kitchenOrderRepository) Create(ctx context.Context, ko *entity.KitchenOrder) error {
	return conn(ctx, r.db).Create(ko).Error
}

func (r *kitchenOrderRepository) GetByID(ctx context.Context, id string) (*entity.KitchenOrder, error) {
	var ko entity.KitchenOrder
	err := conn(ctx, r.db).First(&ko, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ko, err
}

func (r *kitchenOrderRepository) Update(ctx context.Context, ko *entity.KitchenOrder) error {
	return conn(ctx, r.db).Save(ko).Error
}

func (r *kitchenOrderRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Delete(&entity.KitchenOrder{}, "id = ?", id).Error
}

func (r *kitchenOrderRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.KitchenOrder, error) {
	return r.List(ctx, &domainRepo.KitchenOrderFilterParams{OrderID: &orderID})
}

func (r *kitchenOrderRepository) List(ctx context.Context, params *domainRepo.KitchenOrderFilterParams) ([]entity.KitchenOrder, error) {
	var tickets []entity.KitchenOrder

	query := conn(ctx, r.db).Model(&entity.KitchenOrder{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.OrderID != nil {
		query = query.Where("order_id = ?", *params.OrderID)
	}

	err := query.Order("created_at ASC").Find(&tickets).Error
	return tickets, err
}

func (r *kitchenOrderRepository) DeleteByStatus(ctx context.Context, status enum.KitchenStatus) (int64, error) {
	result := conn(ctx, r.db).
		Where("status = ?", status).
		Delete(&entity.KitchenOrder{})
	return result.RowsAffected, result.Error
}
