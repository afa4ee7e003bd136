package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
)

// CreateOrderRequest represents an order creation request from the register
type CreateOrderRequest struct {
	Items          []entity.CartItem     `json:"items" binding:"required"`
	OrderDiscount  int64                 `json:"order_discount" binding:"min=0"`
	Status         enum.OrderStatus      `json:"status"`
	Date           *time.Time            `json:"date"`
	PaymentMethod  string                `json:"payment_method" binding:"omitempty,max=50"`
	ReceivedAmount *int64                `json:"received_amount" binding:"omitempty,min=0"`
	PaymentHistory []entity.PaymentEntry `json:"payment_history"`
	CustomerID     *uuid.UUID            `json:"customer_id"`
	CustomerName   string                `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone  string                `json:"customer_phone" binding:"omitempty,max=50"`
	TableID        *uuid.UUID            `json:"table_id"`
	ShiftID        *uuid.UUID            `json:"shift_id"`
	Note           string                `json:"note"`
}

// UpdateOrderRequest merges the given fields into an order
type UpdateOrderRequest struct {
	Items         *[]entity.CartItem `json:"items"`
	OrderDiscount *int64             `json:"order_discount" binding:"omitempty,min=0"`
	PaymentMethod *string            `json:"payment_method" binding:"omitempty,max=50"`
	CustomerName  *string            `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone *string            `json:"customer_phone" binding:"omitempty,max=50"`
	TableID       *uuid.UUID         `json:"table_id"`
	ShiftID       *uuid.UUID         `json:"shift_id"`
	Note          *string            `json:"note"`
}

// SettleOrderRequest records the payment that completes a pending order
type SettleOrderRequest struct {
	Method         string `json:"method" binding:"omitempty,max=50"`
	Amount         *int64 `json:"amount" binding:"omitempty,min=0"`
	ReceivedAmount *int64 `json:"received_amount" binding:"omitempty,min=0"`
}

// OrderFilterRequest represents order filter parameters
type OrderFilterRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
