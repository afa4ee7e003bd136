package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDForUpdate issues SELECT ... FOR UPDATE so concurrent ledger writes queue up
func (r *productRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).
		Clauses(lockForUpdate).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Omit("stock", "created_at").Save(product).Error
}

func (r *productRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	return conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("stock", stock).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := conn(ctx, r.db).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.ProductType != nil {
		query = query.Where("product_type = ?", *params.ProductType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("name ASC").
		Find(&products).Error

	return products, total, err
}

var lockForUpdate = clause.Locking{Strength: "UPDATE"}
