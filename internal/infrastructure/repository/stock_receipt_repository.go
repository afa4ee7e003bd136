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

type stockReceiptRepository struct {
	db *gorm.DB
}

// NewStockReceiptRepository creates a new stock receipt repository
func NewStockReceiptRepository(db *gorm.DB) domainRepo.StockReceiptRepository {
	return &stockReceiptRepository{db: db}
}

func (r *stockReceiptRepository) Create(ctx context.Context, receipt *entity.StockReceipt) error {
	return conn(ctx, r.db).Create(receipt).Error
}

func (r *stockReceiptRepository) GetByID(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) (*entity.StockReceipt, error) {
	var receipt entity.StockReceipt
	err := conn(ctx, r.db).
		Preload("Items").
		First(&receipt, "id = ? AND kind = ?", id, kind).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

// Update rewrites the header and replaces every line
func (r *stockReceiptRepository) Update(ctx context.Context, receipt *entity.StockReceipt) error {
	db := conn(ctx, r.db)
	if err := db.Where("receipt_id = ?", receipt.ID).Delete(&entity.StockReceiptItem{}).Error; err != nil {
		return err
	}
	for i := range receipt.Items {
		receipt.Items[i].ID = uuid.Nil
		receipt.Items[i].ReceiptID = receipt.ID
	}
	if len(receipt.Items) > 0 {
		if err := db.Create(&receipt.Items).Error; err != nil {
			return err
		}
	}
	return db.Omit("Items").Save(receipt).Error
}

func (r *stockReceiptRepository) Delete(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("receipt_id = ?", id).Delete(&entity.StockReceiptItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&entity.StockReceipt{}, "id = ? AND kind = ?", id, kind).Error
}

func (r *stockReceiptRepository) List(ctx context.Context, params *domainRepo.StockReceiptFilterParams) ([]entity.StockReceipt, int64, error) {
	var receipts []entity.StockReceipt
	var total int64

	query := conn(ctx, r.db).Model(&entity.StockReceipt{}).Where("kind = ?", params.Kind)

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
		Preload("Items").
		Order("date DESC").
		Find(&receipts).Error

	return receipts, total, err
}

func (r *stockReceiptRepository) LastNumberByPrefix(ctx context.Context, kind enum.ReceiptKind, prefix string) (string, error) {
	var numbers []string
	err := conn(ctx, r.db).Model(&entity.StockReceipt{}).
		Where("kind = ? AND receipt_number LIKE ?", kind, prefix+"%").
		Order("receipt_number DESC").
		Limit(1).
		Pluck("receipt_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

type treatmentPackageRepository struct {
	db *gorm.DB
}

// NewTreatmentPackageRepository creates a new customer treatment package repository
func NewTreatmentPackageRepository(db *gorm.DB) domainRepo.TreatmentPackageRepository {
	return &treatmentPackageRepository{db: db}
}

func (r *treatmentPackageRepository) Create(ctx context.Context, pkg *entity.CustomerTreatmentPackage) error {
	return conn(ctx, r.db).Create(pkg).Error
}

func (r *treatmentPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error) {
	var pkg entity.CustomerTreatmentPackage
	err := conn(ctx, r.db).First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pkg, err
}

func (r *treatmentPackageRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error) {
	var pkg entity.CustomerTreatmentPackage
	err := conn(ctx, r.db).
		Clauses(lockForUpdate).
		First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pkg, err
}

func (r *treatmentPackageRepository) Update(ctx context.Context, pkg *entity.CustomerTreatmentPackage) error {
	return conn(ctx, r.db).Save(pkg).Error
}

func (r *treatmentPackageRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]entity.CustomerTreatmentPackage, error) {
	var pkgs []entity.CustomerTreatmentPackage
	query := conn(ctx, r.db).Where("customer_id = ?", customerID)
	if activeOnly {
		query = query.Where("is_active = ? AND remaining_sessions > 0", true)
	}
	err := query.Order("purchased_at ASC").Find(&pkgs).Error
	return pkgs, err
}
