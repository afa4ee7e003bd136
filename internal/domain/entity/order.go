package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// PaymentMethodCash is the method recorded when the caller names none
const PaymentMethodCash = "cash"

// Order represents a sales order built from a cart snapshot.
// Amounts are stored in minor currency units.
type Order struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber    string           `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	Date           time.Time        `gorm:"not null;index" json:"date"`
	Items          []CartItem       `gorm:"serializer:json" json:"items"`
	Subtotal       int64            `gorm:"default:0" json:"subtotal"`
	Discount       int64            `gorm:"default:0" json:"discount"`
	OrderDiscount  int64            `gorm:"default:0" json:"order_discount"`
	Total          int64            `gorm:"default:0" json:"total"`
	Status         enum.OrderStatus `gorm:"default:0;index" json:"status"`
	PaymentMethod  string           `gorm:"size:50" json:"payment_method"`
	PaymentHistory []PaymentEntry   `gorm:"serializer:json" json:"payment_history"`
	CustomerID     *uuid.UUID       `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName   string           `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone  string           `gorm:"size:50" json:"customer_phone,omitempty"`
	TableID        *uuid.UUID       `gorm:"type:uuid;index" json:"table_id,omitempty"`
	ShiftID        *uuid.UUID       `gorm:"type:uuid" json:"shift_id,omitempty"`
	Note           string           `gorm:"type:text" json:"note,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Recalculate derives subtotal, discount and total from the items.
// total is always subtotal - discount.
func (o *Order) Recalculate() {
	var subtotal, discount int64
	for _, item := range o.Items {
		subtotal += item.LineSubtotal()
		discount += item.LineDiscount()
	}
	o.Subtotal = subtotal
	o.Discount = discount + o.OrderDiscount
	o.Total = o.Subtotal - o.Discount
}

// PaidAmount sums the amounts applied by every payment entry
func (o *Order) PaidAmount() int64 {
	var paid int64
	for _, p := range o.PaymentHistory {
		paid += p.Amount
	}
	return paid
}

// PaymentEntry is one settlement recorded against an order
type PaymentEntry struct {
	Method         string    `json:"method"`
	Amount         int64     `json:"amount"`
	ReceivedAmount int64     `json:"received_amount"`
	ChangeAmount   int64     `json:"change_amount"`
	PaidAt         time.Time `json:"paid_at"`
}

// NewPaymentEntry records a payment of amount against a tendered sum
func NewPaymentEntry(method string, amount, received int64, at time.Time) PaymentEntry {
	if method == "" {
		method = PaymentMethodCash
	}
	return PaymentEntry{
		Method:         method,
		Amount:         amount,
		ReceivedAmount: received,
		ChangeAmount:   received - amount,
		PaidAt:         at,
	}
}

// CartItem is a product snapshot in the cart.
// NotifiedQuantity, CancelledQuantity and Cancelled are only used by food service.
type CartItem struct {
	ID                string           `json:"id"`
	ProductID         uuid.UUID        `json:"product_id"`
	Name              string           `json:"name"`
	Price             int64            `json:"price"`
	CostPrice         int64            `json:"cost_price,omitempty"`
	ProductType       enum.ProductType `json:"product_type"`
	Quantity          int              `json:"quantity"`
	Discount          int64            `json:"discount"`
	Note              string           `json:"note,omitempty"`
	NotifiedQuantity  int              `json:"notified_quantity,omitempty"`
	CancelledQuantity int              `json:"cancelled_quantity,omitempty"`
	Cancelled         bool             `json:"cancelled,omitempty"`
}

// LineSubtotal is price x quantity
func (c CartItem) LineSubtotal() int64 {
	return c.Price * int64(c.Quantity)
}

// LineDiscount is the per-unit discount x quantity
func (c CartItem) LineDiscount() int64 {
	return c.Discount * int64(c.Quantity)
}
