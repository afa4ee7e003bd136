package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
)

// CreateKitchenOrderRequest sends cart lines of an order to the kitchen
type CreateKitchenOrderRequest struct {
	OrderID uuid.UUID         `json:"order_id" binding:"required"`
	Items   []entity.CartItem `json:"items" binding:"required"`
}

// UpdateKitchenStatusRequest moves a ticket along its lifecycle
type UpdateKitchenStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateKitchenItemsRequest replaces a ticket's items
type UpdateKitchenItemsRequest struct {
	Items []entity.KitchenOrderItem `json:"items" binding:"required"`
}
