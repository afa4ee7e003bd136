package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerTreatmentPackage is a prepaid bundle of sessions owned by a customer.
// RemainingSessions always equals TotalSessions - len(UsedSessionNumbers).
type CustomerTreatmentPackage struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	OrderID            *uuid.UUID         `gorm:"type:uuid;index" json:"order_id,omitempty"`
	TreatmentID        uuid.UUID          `gorm:"type:uuid;not null" json:"treatment_id"`
	TreatmentName      string             `gorm:"size:255" json:"treatment_name"`
	TotalSessions      int                `gorm:"not null" json:"total_sessions"`
	UsedSessionNumbers []int              `gorm:"serializer:json" json:"used_session_numbers"`
	RemainingSessions  int                `gorm:"not null" json:"remaining_sessions"`
	IsActive           bool               `gorm:"default:true;index" json:"is_active"`
	Sessions           []TreatmentSession `gorm:"serializer:json" json:"sessions"`
	PurchasedAt        time.Time          `json:"purchased_at"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new package
func (p *CustomerTreatmentPackage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UsedSessionNumbers == nil {
		p.UsedSessionNumbers = []int{}
	}
	return nil
}

// TableName returns the table name for the CustomerTreatmentPackage model
func (CustomerTreatmentPackage) TableName() string {
	return "customer_treatment_packages"
}

// ReferencesService reports whether any planned session consumes serviceID
func (p *CustomerTreatmentPackage) ReferencesService(serviceID uuid.UUID) bool {
	if p.TreatmentID == serviceID {
		return true
	}
	for _, s := range p.Sessions {
		for _, item := range s.Items {
			if item.ProductID == serviceID {
				return true
			}
		}
	}
	return false
}
