package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/ledger"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// PackageService is the treatment package ledger. It is the only writer of
// package balances.
type PackageService struct {
	rt          Runtime
	packageRepo repository.TreatmentPackageRepository
	productRepo repository.ProductRepository
	log         *logrus.Entry
}

// NewPackageService creates a new treatment package service
func NewPackageService(
	rt Runtime,
	packageRepo repository.TreatmentPackageRepository,
	productRepo repository.ProductRepository,
) *PackageService {
	return &PackageService{
		rt:          rt,
		packageRepo: packageRepo,
		productRepo: productRepo,
		log:         rt.Log.Component("packages"),
	}
}

// UseSession marks session n as consumed. An unknown package is a silent
// no-op and returns nil; a session already used is left as is.
func (s *PackageService) UseSession(ctx context.Context, packageID uuid.UUID, n int) (*entity.CustomerTreatmentPackage, error) {
	return s.changeSession(ctx, packageID, n, "use")
}

// ReturnSession gives session n back. Sessions that were never used are left alone.
func (s *PackageService) ReturnSession(ctx context.Context, packageID uuid.UUID, n int) (*entity.CustomerTreatmentPackage, error) {
	return s.changeSession(ctx, packageID, n, "return")
}

func (s *PackageService) changeSession(ctx context.Context, packageID uuid.UUID, n int, action string) (*entity.CustomerTreatmentPackage, error) {
	var (
		pkg     *entity.CustomerTreatmentPackage
		changed bool
	)
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		pkg, err = s.packageRepo.GetByIDForUpdate(ctx, packageID)
		if err != nil || pkg == nil {
			return err
		}
		if n < 1 || n > pkg.TotalSessions {
			return apperror.NewBadRequestError(fmt.Sprintf("session %d is outside 1..%d", n, pkg.TotalSessions))
		}

		var used []int
		if action == "use" {
			used, changed = ledger.MarkUsed(pkg.UsedSessionNumbers, n)
		} else {
			used, changed = ledger.MarkReturned(pkg.UsedSessionNumbers, n)
		}
		if !changed {
			return nil
		}

		pkg.UsedSessionNumbers = used
		pkg.RemainingSessions = ledger.Remaining(pkg.TotalSessions, used)
		if action == "use" {
			pkg.IsActive = pkg.RemainingSessions > 0
		} else {
			pkg.IsActive = true
		}
		pkg.UpdatedAt = s.rt.now()
		return s.packageRepo.Update(ctx, pkg)
	})
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		s.log.WithField("package_id", packageID).Debug("session change on unknown package ignored")
		return nil, nil
	}

	if changed {
		metrics.RecordPackageSession(action)
		s.log.WithFields(logrus.Fields{
			"package_id": pkg.ID,
			"session":    n,
			"action":     action,
			"remaining":  pkg.RemainingSessions,
		}).Info("package session changed")
	}
	return pkg, nil
}

// GetPackageForService returns the first active package of the customer that
// still has sessions left and whose plan consumes serviceID. nil when none.
func (s *PackageService) GetPackageForService(ctx context.Context, customerID, serviceID uuid.UUID) (*entity.CustomerTreatmentPackage, error) {
	packages, err := s.packageRepo.ListByCustomer(ctx, customerID, true)
	if err != nil {
		return nil, err
	}
	for i := range packages {
		p := &packages[i]
		if p.IsActive && p.RemainingSessions > 0 && p.ReferencesService(serviceID) {
			return p, nil
		}
	}
	return nil, nil
}

// GetPackage retrieves a package by ID
func (s *PackageService) GetPackage(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperror.NewNotFoundError("Treatment package")
	}
	return pkg, nil
}

// ListCustomerPackages lists a customer's packages, oldest purchase first
func (s *PackageService) ListCustomerPackages(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]entity.CustomerTreatmentPackage, error) {
	return s.packageRepo.ListByCustomer(ctx, customerID, activeOnly)
}

// issueForOrderTx creates one package per purchased unit of every treatment line.
// Orders without a customer get no packages.
func (s *PackageService) issueForOrderTx(ctx context.Context, order *entity.Order) (int, error) {
	issued := 0
	for _, item := range order.Items {
		if item.ProductType != enum.ProductTypeTreatment || item.Quantity <= 0 {
			continue
		}
		if order.CustomerID == nil {
			s.log.WithFields(logrus.Fields{
				"order_number": order.OrderNumber,
				"product_id":   item.ProductID,
			}).Warn("treatment sold without a customer, no package issued")
			continue
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return issued, err
		}
		if product == nil {
			return issued, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		plan := sessionPlan(product)

		for unit := 0; unit < item.Quantity; unit++ {
			orderID := order.ID
			pkg := &entity.CustomerTreatmentPackage{
				ID:                 uuid.New(),
				CustomerID:         *order.CustomerID,
				OrderID:            &orderID,
				TreatmentID:        product.ID,
				TreatmentName:      product.Name,
				TotalSessions:      len(plan),
				UsedSessionNumbers: []int{},
				RemainingSessions:  len(plan),
				IsActive:           true,
				Sessions:           plan,
				PurchasedAt:        order.Date,
			}
			if err := s.packageRepo.Create(ctx, pkg); err != nil {
				return issued, fmt.Errorf("create treatment package: %w", err)
			}
			issued++
		}
	}
	return issued, nil
}

// sessionPlan returns the product's own plan, or one session per configured
// session count whose only line is the treatment itself
func sessionPlan(product *entity.Product) []entity.TreatmentSession {
	if len(product.SessionPlan) > 0 {
		plan := make([]entity.TreatmentSession, len(product.SessionPlan))
		for i, session := range product.SessionPlan {
			plan[i] = entity.TreatmentSession{
				SessionNumber: session.SessionNumber,
				Items:         append([]entity.TreatmentSessionItem(nil), session.Items...),
			}
		}
		return plan
	}

	count := product.TreatmentSessions
	if count < 1 {
		count = 1
	}
	plan := make([]entity.TreatmentSession, count)
	for i := range plan {
		plan[i] = entity.TreatmentSession{
			SessionNumber: i + 1,
			Items: []entity.TreatmentSessionItem{{
				ProductID:   product.ID,
				Name:        product.Name,
				ProductType: product.ProductType,
				Quantity:    1,
			}},
		}
	}
	return plan
}
