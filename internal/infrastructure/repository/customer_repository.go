package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/pagination"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return conn(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).First(&customer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{})

	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new dining table repository
func NewTableRepository(db *gorm.DB) domainRepo.TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *entity.Table) error {
	return conn(ctx, r.db).Create(table).Error
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error) {
	var table entity.Table
	err := conn(ctx, r.db).First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &table, err
}

func (r *tableRepository) Update(ctx context.Context, table *entity.Table) error {
	return conn(ctx, r.db).Save(table).Error
}

func (r *tableRepository) List(ctx context.Context) ([]entity.Table, error) {
	var tables []entity.Table
	err := conn(ctx, r.db).Order("name ASC").Find(&tables).Error
	return tables, err
}
