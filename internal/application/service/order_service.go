package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// OrderService turns carts into orders and runs their completion side effects
type OrderService struct {
	rt           Runtime
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	tableRepo    repository.TableRepository
	stock        *StockService
	kitchen      *KitchenService
	packages     *PackageService
	log          *logrus.Entry

	// numberMu serializes order numbering
	numberMu sync.Mutex
}

// NewOrderService creates a new order service
func NewOrderService(
	rt Runtime,
	repos *repository.Repositories,
	stock *StockService,
	kitchen *KitchenService,
	packages *PackageService,
) *OrderService {
	return &OrderService{
		rt:           rt,
		orderRepo:    repos.Orders,
		productRepo:  repos.Products,
		customerRepo: repos.Customers,
		tableRepo:    repos.Tables,
		stock:        stock,
		kitchen:      kitchen,
		packages:     packages,
		log:          rt.Log.Component("orders"),
	}
}

// CreateOrderInput represents the cart and order data of a new order
type CreateOrderInput struct {
	Items          []entity.CartItem
	OrderDiscount  int64
	Status         enum.OrderStatus
	Date           *time.Time
	PaymentMethod  string
	ReceivedAmount *int64
	PaymentHistory []entity.PaymentEntry
	CustomerID     *uuid.UUID
	CustomerName   string
	CustomerPhone  string
	TableID        *uuid.UUID
	ShiftID        *uuid.UUID
	Note           string
}

// UpdateOrderInput is a field merge. Status is not part of it.
type UpdateOrderInput struct {
	Items         *[]entity.CartItem
	OrderDiscount *int64
	PaymentMethod *string
	CustomerName  *string
	CustomerPhone *string
	TableID       *uuid.UUID
	ShiftID       *uuid.UUID
	Note          *string
}

// PaymentInput settles a pending order
type PaymentInput struct {
	Method         string
	Amount         *int64
	ReceivedAmount *int64
}

func validateItems(items []entity.CartItem) []apperror.FieldError {
	var fieldErrors []apperror.FieldError
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "is required"})
		}
		if item.Quantity < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must not be negative"})
		}
		if item.Price < 0 || item.Discount < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d]", i), Message: "price and discount must not be negative"})
		}
	}
	return fieldErrors
}

// CreateOrder persists the cart as an order. Stock deduction, customer
// creation, package issue and kitchen auto-serve happen in the same
// transaction as the insert.
func (s *OrderService) CreateOrder(ctx context.Context, in *CreateOrderInput) (*entity.Order, error) {
	fieldErrors := validateItems(in.Items)
	if in.OrderDiscount < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "order_discount", Message: "must not be negative"})
	}
	if !in.Status.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "status", Message: "is invalid"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}
	if in.Status == enum.OrderStatusCancelled {
		return nil, apperror.NewBadRequestError("An order cannot be created cancelled")
	}

	s.numberMu.Lock()
	defer s.numberMu.Unlock()

	rec := &event.Recorder{}
	var order *entity.Order
	var issued int
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.rt.now()
		items, err := s.snapshotItems(ctx, in.Items)
		if err != nil {
			return err
		}

		// keyed by number so a back-dated order still takes today's next slot
		prefix := OrderPrefix(now)
		last, err := s.orderRepo.LastNumberByPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("last order number: %w", err)
		}

		order = &entity.Order{
			ID:            uuid.New(),
			OrderNumber:   OrderNumber(now, NextSequence(prefix, last)),
			Date:          now,
			Items:         items,
			OrderDiscount: in.OrderDiscount,
			Status:        in.Status,
			PaymentMethod: in.PaymentMethod,
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			TableID:       in.TableID,
			ShiftID:       in.ShiftID,
			Note:          in.Note,
		}
		if in.Date != nil {
			order.Date = *in.Date
		}
		if order.PaymentMethod == "" {
			order.PaymentMethod = entity.PaymentMethodCash
		}
		order.Recalculate()

		order.PaymentHistory = in.PaymentHistory
		if len(order.PaymentHistory) == 0 {
			received := order.Total
			if in.ReceivedAmount != nil {
				received = *in.ReceivedAmount
			}
			order.PaymentHistory = []entity.PaymentEntry{
				entity.NewPaymentEntry(order.PaymentMethod, order.Total, received, now),
			}
		}

		if err := s.resolveCustomerTx(ctx, order, in.CustomerID); err != nil {
			return err
		}
		if err := s.occupyTableTx(ctx, order); err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if issued, err = s.packages.issueForOrderTx(ctx, order); err != nil {
			return err
		}
		if order.Status == enum.OrderStatusCompleted {
			if err := s.completeTx(ctx, rec, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	metrics.RecordOrderCreated(order.Status.String())
	s.log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status.String(),
		"total":        order.Total,
		"packages":     issued,
	}).Info("order created")
	return order, nil
}

// snapshotItems checks every product exists and fills in the catalogue kind
// the ledgers rely on
func (s *OrderService) snapshotItems(ctx context.Context, items []entity.CartItem) ([]entity.CartItem, error) {
	out := make([]entity.CartItem, len(items))
	copy(out, items)
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(out))
	for _, item := range out {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	for i := range out {
		product, ok := productMap[out[i].ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", out[i].ProductID))
		}
		out[i].ProductType = product.ProductType
		if out[i].Name == "" {
			out[i].Name = product.Name
		}
		if out[i].ID == "" {
			out[i].ID = product.ID.String()
		}
	}
	return out, nil
}

// resolveCustomerTx links the order to a known customer, creating one for an
// unseen phone and name pair
func (s *OrderService) resolveCustomerTx(ctx context.Context, order *entity.Order, customerID *uuid.UUID) error {
	if customerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}
		order.CustomerID = &customer.ID
		if order.CustomerName == "" {
			order.CustomerName = customer.Name
		}
		if order.CustomerPhone == "" {
			order.CustomerPhone = customer.Phone
		}
		return nil
	}
	if order.CustomerPhone == "" {
		return nil
	}

	customer, err := s.customerRepo.GetByPhone(ctx, order.CustomerPhone)
	if err != nil {
		return err
	}
	if customer == nil {
		if order.CustomerName == "" {
			return nil
		}
		customer = &entity.Customer{
			ID:    uuid.New(),
			Name:  order.CustomerName,
			Phone: order.CustomerPhone,
		}
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		s.log.WithField("customer_id", customer.ID).Info("customer created from order")
	}
	order.CustomerID = &customer.ID
	if order.CustomerName == "" {
		order.CustomerName = customer.Name
	}
	return nil
}

// occupyTableTx seats a pending order at its table
func (s *OrderService) occupyTableTx(ctx context.Context, order *entity.Order) error {
	if order.TableID == nil {
		return nil
	}
	table, err := s.tableRepo.GetByID(ctx, *order.TableID)
	if err != nil {
		return err
	}
	if table == nil {
		return apperror.NewNotFoundError("Table")
	}
	if order.Status != enum.OrderStatusPending {
		return nil
	}
	table.Occupy(order.ID)
	if err := s.tableRepo.Update(ctx, table); err != nil {
		return fmt.Errorf("occupy table: %w", err)
	}
	return nil
}

// completeTx deducts stock for the sale and serves the order's tickets
func (s *OrderService) completeTx(ctx context.Context, rec *event.Recorder, order *entity.Order) error {
	if err := s.stock.deductForSaleTx(ctx, rec, order.Items); err != nil {
		return err
	}
	_, err := s.kitchen.autoServeTx(ctx, rec, order.ID)
	return err
}

// UpdateOrder merges the given fields into the order. It never touches stock,
// tickets or packages.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, in *UpdateOrderInput) (*entity.Order, error) {
	if in.Items != nil {
		if fieldErrors := validateItems(*in.Items); len(fieldErrors) > 0 {
			return nil, apperror.NewValidationError(fieldErrors)
		}
	}
	if in.OrderDiscount != nil && *in.OrderDiscount < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "order_discount", Message: "must not be negative"}})
	}

	var order *entity.Order
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		recalc := false
		if in.Items != nil {
			items, err := s.snapshotItems(ctx, *in.Items)
			if err != nil {
				return err
			}
			order.Items = items
			recalc = true
		}
		if in.OrderDiscount != nil {
			order.OrderDiscount = *in.OrderDiscount
			recalc = true
		}
		if in.PaymentMethod != nil {
			order.PaymentMethod = *in.PaymentMethod
		}
		if in.CustomerName != nil {
			order.CustomerName = *in.CustomerName
		}
		if in.CustomerPhone != nil {
			order.CustomerPhone = *in.CustomerPhone
		}
		if in.TableID != nil {
			order.TableID = in.TableID
		}
		if in.ShiftID != nil {
			order.ShiftID = in.ShiftID
		}
		if in.Note != nil {
			order.Note = *in.Note
		}
		if recalc {
			order.Recalculate()
		}
		order.UpdatedAt = s.rt.now()
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("order_id", order.ID).Info("order updated")
	return order, nil
}

// DeleteOrder removes the order without touching anything it affected
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	rec := &event.Recorder{}
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if err := s.orderRepo.Delete(ctx, id); err != nil {
			return err
		}
		rec.Record(event.OrderDeleted, s.rt.now(), event.OrderDeletedPayload{OrderID: order.ID, OrderNumber: order.OrderNumber})
		return nil
	})
	if err != nil {
		return err
	}

	s.rt.publish(rec)
	s.log.WithField("order_id", id).Info("order deleted")
	return nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders retrieves orders with pagination and filters
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// SettleOrder records a payment against a pending order and completes it:
// stock is deducted, its tickets are served and its table is freed.
func (s *OrderService) SettleOrder(ctx context.Context, id uuid.UUID, in *PaymentInput) (*entity.Order, error) {
	rec := &event.Recorder{}
	var order *entity.Order
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if order.Status != enum.OrderStatusPending {
			return apperror.NewConflictError(fmt.Sprintf("order %s is %s", order.OrderNumber, order.Status))
		}

		now := s.rt.now()
		amount := order.Total
		if in.Amount != nil {
			amount = *in.Amount
		}
		received := amount
		if in.ReceivedAmount != nil {
			received = *in.ReceivedAmount
		}
		if amount < 0 || received < amount {
			return apperror.NewBadRequestError("Received amount does not cover the payment")
		}
		method := in.Method
		if method == "" {
			method = order.PaymentMethod
		}
		order.PaymentHistory = append(order.PaymentHistory, entity.NewPaymentEntry(method, amount, received, now))
		order.Status = enum.OrderStatusCompleted
		order.UpdatedAt = now

		if err := s.completeTx(ctx, rec, order); err != nil {
			return err
		}
		if order.TableID != nil {
			if _, err := releaseTableTx(ctx, s.tableRepo, *order.TableID, order.ID); err != nil {
				return err
			}
		}
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "order_number": order.OrderNumber}).Info("order settled")
	return order, nil
}

// CancelOrder marks the order cancelled. A completed order puts its stock back.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	rec := &event.Recorder{}
	var order *entity.Order
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if order.Status == enum.OrderStatusCancelled {
			return apperror.NewConflictError(fmt.Sprintf("order %s is already cancelled", order.OrderNumber))
		}

		if order.Status == enum.OrderStatusCompleted {
			if err := s.stock.restockForCancelTx(ctx, rec, order.Items); err != nil {
				return err
			}
		}
		if order.TableID != nil {
			if _, err := releaseTableTx(ctx, s.tableRepo, *order.TableID, order.ID); err != nil {
				return err
			}
		}
		order.Status = enum.OrderStatusCancelled
		order.UpdatedAt = s.rt.now()
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "order_number": order.OrderNumber}).Info("order cancelled")
	return order, nil
}
