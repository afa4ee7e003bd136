package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// StockReceipt is a stock-in or stock-out document.
// Its stock effect is reversed exactly when it is edited or deleted.
type StockReceipt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Kind          enum.ReceiptKind   `gorm:"not null;index" json:"kind"`
	ReceiptNumber string             `gorm:"size:32;uniqueIndex;not null" json:"receipt_number"`
	Date          time.Time          `gorm:"not null" json:"date"`
	Supplier      string             `gorm:"size:255" json:"supplier,omitempty"`
	Reason        string             `gorm:"size:255" json:"reason,omitempty"`
	Note          string             `gorm:"type:text" json:"note,omitempty"`
	TotalAmount   int64              `gorm:"default:0" json:"total_amount"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Items         []StockReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *StockReceipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockReceipt model
func (StockReceipt) TableName() string {
	return "stock_receipts"
}

// Quantities sums line quantities per product
func (r *StockReceipt) Quantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.Items))
	for _, item := range r.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// StockReceiptItem is a line on a stock receipt
type StockReceiptItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID   uuid.UUID `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"size:255" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Total       int64     `gorm:"not null" json:"total"`
}

// BeforeCreate generates a UUID before creating a new receipt line
func (i *StockReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockReceiptItem model
func (StockReceiptItem) TableName() string {
	return "stock_receipt_items"
}
