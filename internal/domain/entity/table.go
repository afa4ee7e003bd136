package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Table is a dining table that an order may occupy
type Table struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Name           string           `gorm:"size:100;not null" json:"name"`
	Seats          int              `gorm:"default:0" json:"seats"`
	Status         enum.TableStatus `gorm:"default:0" json:"status"`
	CurrentOrderID *uuid.UUID       `gorm:"type:uuid;index" json:"current_order_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new table
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Table model
func (Table) TableName() string {
	return "dining_tables"
}

// Occupy seats an order at the table
func (t *Table) Occupy(orderID uuid.UUID) {
	t.Status = enum.TableStatusOccupied
	t.CurrentOrderID = &orderID
}

// Release returns the table to available and clears the order link
func (t *Table) Release() {
	t.Status = enum.TableStatusAvailable
	t.CurrentOrderID = nil
}
