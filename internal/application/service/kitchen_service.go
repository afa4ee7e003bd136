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
	"github.com/sirupsen/logrus"
)

// KitchenService drives kitchen tickets through their lifecycle. It is the
// only writer of KitchenOrder.Status.
type KitchenService struct {
	rt          Runtime
	kitchenRepo repository.KitchenOrderRepository
	orderRepo   repository.OrderRepository
	tableRepo   repository.TableRepository
	log         *logrus.Entry

	// idMu serializes ticket id generation
	idMu sync.Mutex
}

// NewKitchenService creates a new kitchen service
func NewKitchenService(
	rt Runtime,
	kitchenRepo repository.KitchenOrderRepository,
	orderRepo repository.OrderRepository,
	tableRepo repository.TableRepository,
) *KitchenService {
	return &KitchenService{
		rt:          rt,
		kitchenRepo: kitchenRepo,
		orderRepo:   orderRepo,
		tableRepo:   tableRepo,
		log:         rt.Log.Component("kitchen"),
	}
}

// ItemsUpdateResult tells the caller what an items update ended up doing
type ItemsUpdateResult struct {
	KitchenOrder  *entity.KitchenOrder `json:"kitchen_order,omitempty"`
	Deleted       bool                 `json:"deleted"`
	OrderDeleted  bool                 `json:"order_deleted"`
	TableReleased bool                 `json:"table_released"`
}

// CreateKitchenOrder always creates a new ticket. A ticket for an order that
// already has tickets is flagged as an additional order.
func (s *KitchenService) CreateKitchenOrder(ctx context.Context, orderID uuid.UUID, items []entity.CartItem) (*entity.KitchenOrder, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "items", Message: "at least one item is required"}})
	}

	s.idMu.Lock()
	defer s.idMu.Unlock()

	rec := &event.Recorder{}
	var ko *entity.KitchenOrder
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		existing, err := s.kitchenRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}

		now := s.rt.now()
		id, err := s.nextTicketID(ctx, now)
		if err != nil {
			return err
		}

		ko = &entity.KitchenOrder{
			ID:                id,
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			TableID:           order.TableID,
			Items:             make([]entity.KitchenOrderItem, len(items)),
			Status:            enum.KitchenStatusPending,
			IsAdditionalOrder: len(existing) > 0,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		for i, item := range items {
			original := item.ID
			if original == "" {
				original = item.ProductID.String()
			}
			item.ID = KitchenItemID(original, now, i)
			ko.Items[i] = entity.KitchenOrderItem{CartItem: item, NotifiedAt: now}
		}

		if err := s.kitchenRepo.Create(ctx, ko); err != nil {
			return fmt.Errorf("create kitchen order: %w", err)
		}
		rec.Record(event.KitchenOrderCreated, now, event.KitchenOrderPayload{KitchenOrder: *ko})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithFields(logrus.Fields{
		"kitchen_order_id": ko.ID,
		"order_id":         ko.OrderID,
		"additional":       ko.IsAdditionalOrder,
	}).Info("kitchen order created")
	return ko, nil
}

// nextTicketID returns KITCHEN-{millis}, moving forward a millisecond at a
// time while the id is taken
func (s *KitchenService) nextTicketID(ctx context.Context, at time.Time) (string, error) {
	for {
		id := KitchenOrderID(at)
		taken, err := s.kitchenRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return id, nil
		}
		at = at.Add(time.Millisecond)
	}
}

// UpdateStatus moves a ticket one step along pending, cooking, completed,
// served. Setting the current status again is a no-op.
func (s *KitchenService) UpdateStatus(ctx context.Context, id string, status enum.KitchenStatus) (*entity.KitchenOrder, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid kitchen status")
	}

	rec := &event.Recorder{}
	var ko *entity.KitchenOrder
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		ko, err = s.kitchenRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ko == nil {
			return apperror.NewNotFoundError("Kitchen order")
		}
		if ko.Status == status {
			return nil
		}
		if next, ok := ko.Status.Next(); !ok || next != status {
			return apperror.NewConflictError(fmt.Sprintf("cannot move kitchen order from %s to %s", ko.Status, status))
		}

		now := s.rt.now()
		ko.StampStatus(status, now)
		if err := s.kitchenRepo.Update(ctx, ko); err != nil {
			return fmt.Errorf("update kitchen order: %w", err)
		}
		rec.Record(event.KitchenStatusChanged, now, event.KitchenStatusPayload{
			KitchenOrderID: ko.ID,
			OrderID:        ko.OrderID,
			Status:         status,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithFields(logrus.Fields{"kitchen_order_id": ko.ID, "status": ko.Status.String()}).Info("kitchen status updated")
	return ko, nil
}

// UpdateItems replaces a ticket's items. When every item is cancelled the
// ticket is deleted, and when the order has no other unserved ticket left the
// order is deleted and its table released.
func (s *KitchenService) UpdateItems(ctx context.Context, id string, items []entity.KitchenOrderItem) (*ItemsUpdateResult, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "items", Message: "at least one item is required"}})
	}

	rec := &event.Recorder{}
	result := &ItemsUpdateResult{}
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ko, err := s.kitchenRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ko == nil {
			return apperror.NewNotFoundError("Kitchen order")
		}
		now := s.rt.now()

		if !entity.AllCancelled(items) {
			ko.Items = entity.CopyKitchenItems(items)
			ko.UpdatedAt = now
			if err := s.kitchenRepo.Update(ctx, ko); err != nil {
				return fmt.Errorf("update kitchen order items: %w", err)
			}
			rec.Record(event.KitchenItemsChanged, now, event.KitchenItemsPayload{
				KitchenOrderID: ko.ID,
				Items:          entity.CopyKitchenItems(ko.Items),
			})
			result.KitchenOrder = ko
			return nil
		}

		if err := s.kitchenRepo.Delete(ctx, ko.ID); err != nil {
			return fmt.Errorf("delete kitchen order: %w", err)
		}
		result.Deleted = true
		rec.Record(event.KitchenOrderDeleted, now, event.KitchenOrderDeletedPayload{KitchenOrderID: ko.ID, OrderID: ko.OrderID})

		siblings, err := s.kitchenRepo.ListByOrder(ctx, ko.OrderID)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.ID != ko.ID && sibling.Status != enum.KitchenStatusServed {
				return nil
			}
		}
		return s.cascadeOrderTx(ctx, rec, ko.OrderID, now, result)
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithFields(logrus.Fields{
		"kitchen_order_id": id,
		"deleted":          result.Deleted,
		"order_deleted":    result.OrderDeleted,
		"table_released":   result.TableReleased,
	}).Info("kitchen order items updated")
	return result, nil
}

// cascadeOrderTx frees the order's table and deletes the order
func (s *KitchenService) cascadeOrderTx(ctx context.Context, rec *event.Recorder, orderID uuid.UUID, now time.Time, result *ItemsUpdateResult) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	if order.TableID != nil {
		released, err := releaseTableTx(ctx, s.tableRepo, *order.TableID, order.ID)
		if err != nil {
			return err
		}
		result.TableReleased = released
	}

	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	result.OrderDeleted = true
	rec.Record(event.OrderDeleted, now, event.OrderDeletedPayload{OrderID: order.ID, OrderNumber: order.OrderNumber})
	return nil
}

// AutoServeOnPayment marks every unserved ticket of the order as served
func (s *KitchenService) AutoServeOnPayment(ctx context.Context, orderID uuid.UUID) (int, error) {
	rec := &event.Recorder{}
	var served int
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		served, err = s.autoServeTx(ctx, rec, orderID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.rt.publish(rec)
	if served > 0 {
		s.log.WithFields(logrus.Fields{"order_id": orderID, "served": served}).Info("kitchen orders auto-served")
	}
	return served, nil
}

func (s *KitchenService) autoServeTx(ctx context.Context, rec *event.Recorder, orderID uuid.UUID) (int, error) {
	tickets, err := s.kitchenRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	now := s.rt.now()
	served := 0
	for i := range tickets {
		ko := &tickets[i]
		if ko.Status == enum.KitchenStatusServed {
			continue
		}
		ko.StampStatus(enum.KitchenStatusServed, now)
		if err := s.kitchenRepo.Update(ctx, ko); err != nil {
			return served, fmt.Errorf("serve kitchen order: %w", err)
		}
		rec.Record(event.KitchenStatusChanged, now, event.KitchenStatusPayload{
			KitchenOrderID: ko.ID,
			OrderID:        ko.OrderID,
			Status:         enum.KitchenStatusServed,
		})
		served++
	}
	return served, nil
}

// ClearServed deletes every served ticket and returns how many were removed
func (s *KitchenService) ClearServed(ctx context.Context) (int64, error) {
	rec := &event.Recorder{}
	var count int64
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		count, err = s.kitchenRepo.DeleteByStatus(ctx, enum.KitchenStatusServed)
		if err != nil {
			return err
		}
		rec.Record(event.KitchenOrdersCleared, s.rt.now(), event.KitchenOrdersClearedPayload{Count: count})
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.rt.publish(rec)
	s.log.WithField("count", count).Info("served kitchen orders cleared")
	return count, nil
}

// GetKitchenOrder retrieves a ticket by ID
func (s *KitchenService) GetKitchenOrder(ctx context.Context, id string) (*entity.KitchenOrder, error) {
	ko, err := s.kitchenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ko == nil {
		return nil, apperror.NewNotFoundError("Kitchen order")
	}
	return ko, nil
}

// ListKitchenOrders lists tickets, oldest first
func (s *KitchenService) ListKitchenOrders(ctx context.Context, params *repository.KitchenOrderFilterParams) ([]entity.KitchenOrder, error) {
	if params == nil {
		params = &repository.KitchenOrderFilterParams{}
	}
	return s.kitchenRepo.List(ctx, params)
}

// releaseTableTx frees a table still held by orderID. A table that has moved
// on to another order is left alone.
func releaseTableTx(ctx context.Context, tables repository.TableRepository, tableID, orderID uuid.UUID) (bool, error) {
	table, err := tables.GetByID(ctx, tableID)
	if err != nil {
		return false, err
	}
	if table == nil {
		return false, nil
	}
	if table.CurrentOrderID != nil && *table.CurrentOrderID != orderID {
		return false, nil
	}
	table.Release()
	if err := tables.Update(ctx, table); err != nil {
		return false, fmt.Errorf("release table: %w", err)
	}
	return true, nil
}
