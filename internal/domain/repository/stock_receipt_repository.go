package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// StockReceiptRepository defines the interface for stock-in and stock-out receipts
type StockReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.StockReceipt) error
	GetByID(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) (*entity.StockReceipt, error)
	// Update replaces the receipt header and all of its lines
	Update(ctx context.Context, receipt *entity.StockReceipt) error
	Delete(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) error
	List(ctx context.Context, params *StockReceiptFilterParams) ([]entity.StockReceipt, int64, error)
	// LastNumberByPrefix returns the highest receipt number of kind starting
	// with prefix, or "" when there is none
	LastNumberByPrefix(ctx context.Context, kind enum.ReceiptKind, prefix string) (string, error)
}

// StockReceiptFilterParams contains filtering parameters for receipt queries
type StockReceiptFilterParams struct {
	Kind       enum.ReceiptKind
	Pagination *pagination.PaginationParams
	StartDate  *time.Time
	EndDate    *time.Time
}

// TreatmentPackageRepository defines the interface for customer treatment packages
type TreatmentPackageRepository interface {
	Create(ctx context.Context, pkg *entity.CustomerTreatmentPackage) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error)
	// GetByIDForUpdate reads a package and locks it until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error)
	Update(ctx context.Context, pkg *entity.CustomerTreatmentPackage) error
	// ListByCustomer returns the customer's packages, oldest purchase first
	ListByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]entity.CustomerTreatmentPackage, error)
}
