package request

import (
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name              string                    `json:"name" binding:"required,max=255"`
	Code              string                    `json:"code" binding:"omitempty,max=100"`
	Price             int64                     `json:"price" binding:"min=0"`
	CostPrice         int64                     `json:"cost_price" binding:"min=0"`
	ProductType       enum.ProductType          `json:"product_type"`
	TreatmentSessions int                       `json:"treatment_sessions" binding:"min=0"`
	SessionPlan       []entity.TreatmentSession `json:"session_plan"`
}

// UpdateProductRequest represents a product update request. Stock changes go through receipts.
type UpdateProductRequest struct {
	Name              *string                    `json:"name" binding:"omitempty,max=255"`
	Code              *string                    `json:"code" binding:"omitempty,max=100"`
	Price             *int64                     `json:"price" binding:"omitempty,min=0"`
	CostPrice         *int64                     `json:"cost_price" binding:"omitempty,min=0"`
	ProductType       *enum.ProductType          `json:"product_type"`
	TreatmentSessions *int                       `json:"treatment_sessions" binding:"omitempty,min=0"`
	SessionPlan       *[]entity.TreatmentSession `json:"session_plan"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search      string `form:"search"`
	ProductType string `form:"product_type"`
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
}

// CreateTableRequest represents a dining table creation request
type CreateTableRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Seats int    `json:"seats" binding:"min=0"`
}

// CustomerFilterRequest represents customer filter parameters
type CustomerFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
