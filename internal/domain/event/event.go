// Package event defines the change notifications emitted after a committed
// operation. Delivery is best effort; observers recover a lost event by
// re-reading current state.
package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
)

// Type names an event on the wire
type Type string

const (
	KitchenStatusChanged Type = "kitchen-status-changed"
	KitchenItemsChanged  Type = "kitchen-items-changed"
	StockAdjusted        Type = "stock-adjusted"
	KitchenOrderCreated  Type = "kitchen-order-created"
	KitchenOrderDeleted  Type = "kitchen-order-deleted"
	OrderDeleted         Type = "order-deleted"
	KitchenOrdersCleared Type = "kitchen-orders-cleared"
)

// Stock adjustment reasons
const (
	ReasonStockIn         = "stock-in"
	ReasonStockInReverse  = "stock-in-reversal"
	ReasonStockOut        = "stock-out"
	ReasonStockOutReverse = "stock-out-reversal"
	ReasonSale            = "sale"
	ReasonOrderCancel     = "order-cancel"
)

// Event is a single notification
type Event struct {
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type KitchenStatusPayload struct {
	KitchenOrderID string             `json:"kitchen_order_id"`
	OrderID        uuid.UUID          `json:"order_id"`
	Status         enum.KitchenStatus `json:"status"`
}

type KitchenItemsPayload struct {
	KitchenOrderID string                    `json:"kitchen_order_id"`
	Items          []entity.KitchenOrderItem `json:"items"`
}

type StockAdjustedPayload struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Stock     int       `json:"stock"`
}

type KitchenOrderPayload struct {
	KitchenOrder entity.KitchenOrder `json:"kitchen_order"`
}

type KitchenOrderDeletedPayload struct {
	KitchenOrderID string    `json:"kitchen_order_id"`
	OrderID        uuid.UUID `json:"order_id"`
}

type OrderDeletedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

type KitchenOrdersClearedPayload struct {
	Count int64 `json:"count"`
}

// Publisher delivers events to observers. Publish must not block.
type Publisher interface {
	Publish(ev Event)
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Recorder collects events raised inside a transaction so they can be
// published once it commits.
type Recorder struct {
	events []Event
}

func (r *Recorder) Record(t Type, at time.Time, payload any) {
	r.events = append(r.events, Event{Type: t, OccurredAt: at, Payload: payload})
}

// Events returns the recorded events in order
func (r *Recorder) Events() []Event {
	return r.events
}

// Flush publishes the recorded events and empties the recorder
func (r *Recorder) Flush(p Publisher) {
	if p == nil {
		r.events = nil
		return
	}
	for _, ev := range r.events {
		p.Publish(ev)
	}
	r.events = nil
}
