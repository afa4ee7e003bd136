package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Product represents a sellable catalogue item.
// Prices are stored in minor currency units.
type Product struct {
	ID                uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Name              string             `gorm:"size:255;not null" json:"name"`
	Code              string             `gorm:"size:100;index" json:"code,omitempty"`
	Price             int64              `gorm:"default:0" json:"price"`
	CostPrice         int64              `gorm:"default:0" json:"cost_price"`
	Stock             int                `gorm:"default:0" json:"stock"`
	ProductType       enum.ProductType   `gorm:"default:0;index" json:"product_type"`
	TreatmentSessions int                `gorm:"default:0" json:"treatment_sessions,omitempty"`
	SessionPlan       []TreatmentSession `gorm:"serializer:json" json:"session_plan,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// StockPolicy returns Tracked(stock) for counted kinds and Unlimited otherwise.
// The raw Stock column is meaningless for unlimited kinds.
func (p *Product) StockPolicy() StockPolicy {
	if p.ProductType.TracksStock() {
		return Tracked(p.Stock)
	}
	return Unlimited()
}

// MarshalJSON reports stock as null for unlimited kinds
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	var stock *int
	if p.ProductType.TracksStock() {
		stock = &p.Stock
	}
	return json.Marshal(&struct {
		Alias
		Stock       *int        `json:"stock"`
		StockPolicy StockPolicy `json:"stock_policy"`
	}{
		Alias:       Alias(p),
		Stock:       stock,
		StockPolicy: p.StockPolicy(),
	})
}

// StockPolicy is either Tracked(n) or Unlimited.
type StockPolicy struct {
	tracked  bool
	quantity int
}

// Tracked returns a policy for a counted product holding n units
func Tracked(n int) StockPolicy {
	return StockPolicy{tracked: true, quantity: n}
}

// Unlimited returns the policy for kinds that are never counted
func Unlimited() StockPolicy {
	return StockPolicy{}
}

func (s StockPolicy) IsTracked() bool {
	return s.tracked
}

// Quantity returns the counted quantity; ok is false for Unlimited
func (s StockPolicy) Quantity() (n int, ok bool) {
	return s.quantity, s.tracked
}

func (s StockPolicy) MarshalJSON() ([]byte, error) {
	if !s.tracked {
		return json.Marshal(map[string]interface{}{"kind": "unlimited"})
	}
	return json.Marshal(map[string]interface{}{"kind": "tracked", "quantity": s.quantity})
}

// TreatmentSession is one visit in a treatment plan
type TreatmentSession struct {
	SessionNumber int                    `json:"session_number"`
	Items         []TreatmentSessionItem `json:"items"`
}

// TreatmentSessionItem is a product or service consumed during a session
type TreatmentSessionItem struct {
	ProductID   uuid.UUID        `json:"product_id"`
	Name        string           `json:"name"`
	ProductType enum.ProductType `json:"product_type"`
	Quantity    int              `json:"quantity"`
}
