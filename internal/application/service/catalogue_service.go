package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// CatalogueService maintains products, dining tables and customers
type CatalogueService struct {
	rt           Runtime
	productRepo  repository.ProductRepository
	tableRepo    repository.TableRepository
	customerRepo repository.CustomerRepository
	log          *logrus.Entry
}

// NewCatalogueService creates a new catalogue service
func NewCatalogueService(rt Runtime, repos *repository.Repositories) *CatalogueService {
	return &CatalogueService{
		rt:           rt,
		productRepo:  repos.Products,
		tableRepo:    repos.Tables,
		customerRepo: repos.Customers,
		log:          rt.Log.Component("catalogue"),
	}
}

// ProductInput represents the create product input
type ProductInput struct {
	Name              string
	Code              string
	Price             int64
	CostPrice         int64
	ProductType       enum.ProductType
	TreatmentSessions int
	SessionPlan       []entity.TreatmentSession
}

// UpdateProductInput represents the update product input. Stock is not part of it.
type UpdateProductInput struct {
	Name              *string
	Code              *string
	Price             *int64
	CostPrice         *int64
	ProductType       *enum.ProductType
	TreatmentSessions *int
	SessionPlan       *[]entity.TreatmentSession
}

func validateProduct(name string, price, costPrice int64, sessions int) error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if price < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if costPrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cost_price", Message: "must not be negative"})
	}
	if sessions < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "treatment_sessions", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateProduct creates a new product. Stock starts at zero and only moves
// through stock receipts and sales.
func (s *CatalogueService) CreateProduct(ctx context.Context, in *ProductInput) (*entity.Product, error) {
	if err := validateProduct(in.Name, in.Price, in.CostPrice, in.TreatmentSessions); err != nil {
		return nil, err
	}

	if in.Code != "" {
		existing, err := s.productRepo.GetByCode(ctx, in.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("Product code already exists")
		}
	}

	product := &entity.Product{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(in.Name),
		Code:              in.Code,
		Price:             in.Price,
		CostPrice:         in.CostPrice,
		ProductType:       in.ProductType,
		TreatmentSessions: in.TreatmentSessions,
		SessionPlan:       in.SessionPlan,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": product.ID, "type": product.ProductType.String()}).Info("product created")
	return product, nil
}

// UpdateProduct updates catalogue fields of a product
func (s *CatalogueService) UpdateProduct(ctx context.Context, id uuid.UUID, in *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if in.Code != nil && *in.Code != product.Code {
		if *in.Code != "" {
			existing, err := s.productRepo.GetByCode(ctx, *in.Code)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != product.ID {
				return nil, apperror.NewConflictError("Product code already exists")
			}
		}
		product.Code = *in.Code
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.CostPrice != nil {
		product.CostPrice = *in.CostPrice
	}
	if in.ProductType != nil {
		product.ProductType = *in.ProductType
	}
	if in.TreatmentSessions != nil {
		product.TreatmentSessions = *in.TreatmentSessions
	}
	if in.SessionPlan != nil {
		product.SessionPlan = *in.SessionPlan
	}
	if err := validateProduct(product.Name, product.Price, product.CostPrice, product.TreatmentSessions); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *CatalogueService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *CatalogueService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// CreateTable adds a dining table
func (s *CatalogueService) CreateTable(ctx context.Context, name string, seats int) (*entity.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}
	table := &entity.Table{
		ID:     uuid.New(),
		Name:   strings.TrimSpace(name),
		Seats:  seats,
		Status: enum.TableStatusAvailable,
	}
	if err := s.tableRepo.Create(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// ListTables lists every dining table
func (s *CatalogueService) ListTables(ctx context.Context) ([]entity.Table, error) {
	return s.tableRepo.List(ctx)
}

// SeedTables creates tables "Table 1".."Table n" when no table exists yet
func (s *CatalogueService) SeedTables(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	created := 0
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.tableRepo.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		for i := 1; i <= n; i++ {
			table := &entity.Table{ID: uuid.New(), Name: fmt.Sprintf("Table %d", i), Seats: 4}
			if err := s.tableRepo.Create(ctx, table); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.log.WithField("count", created).Info("dining tables seeded")
	}
	return created, nil
}

// GetCustomer retrieves a customer by ID
func (s *CatalogueService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers, optionally filtered by name or phone
func (s *CatalogueService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}
