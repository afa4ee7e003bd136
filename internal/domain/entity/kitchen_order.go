package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
)

// KitchenOrder is a preparation ticket sent to the kitchen for part of an order.
// One order may have many tickets; they are never merged.
type KitchenOrder struct {
	ID                string             `gorm:"size:64;primaryKey" json:"id"`
	OrderID           uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_id"`
	OrderNumber       string             `gorm:"size:32;index" json:"order_number"`
	TableID           *uuid.UUID         `gorm:"type:uuid" json:"table_id,omitempty"`
	Items             []KitchenOrderItem `gorm:"serializer:json" json:"items"`
	Status            enum.KitchenStatus `gorm:"default:0;index" json:"status"`
	IsAdditionalOrder bool               `gorm:"default:false" json:"is_additional_order"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	CookingStartedAt  *time.Time         `json:"cooking_started_at,omitempty"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	ServedAt          *time.Time         `json:"served_at,omitempty"`
}

// TableName returns the table name for the KitchenOrder model
func (KitchenOrder) TableName() string {
	return "kitchen_orders"
}

// StampStatus sets the status and the timestamp that belongs to it
func (k *KitchenOrder) StampStatus(status enum.KitchenStatus, at time.Time) {
	k.Status = status
	switch status {
	case enum.KitchenStatusCooking:
		k.CookingStartedAt = &at
	case enum.KitchenStatusCompleted:
		k.CompletedAt = &at
	case enum.KitchenStatusServed:
		k.ServedAt = &at
	}
	k.UpdatedAt = at
}

// KitchenOrderItem is a cart line as notified to the kitchen
type KitchenOrderItem struct {
	CartItem
	NotifiedAt   time.Time `json:"notified_at"`
	CancelReason string    `json:"cancel_reason,omitempty"`
}

// AllCancelled reports whether every item is cancelled. It is false for an empty list.
func AllCancelled(items []KitchenOrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Cancelled {
			return false
		}
	}
	return true
}

// CopyKitchenItems returns a copy that shares no memory with items
func CopyKitchenItems(items []KitchenOrderItem) []KitchenOrderItem {
	if items == nil {
		return nil
	}
	out := make([]KitchenOrderItem, len(items))
	copy(out, items)
	return out
}
