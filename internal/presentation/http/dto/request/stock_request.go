package request

import (
	"time"

	"github.com/google/uuid"
)

// StockReceiptLineRequest is one product line of a receipt
type StockReceiptLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64     `json:"unit_price" binding:"min=0"`
}

// StockReceiptRequest is the body of a stock-in or stock-out create or update
type StockReceiptRequest struct {
	Date     *time.Time                `json:"date"`
	Supplier string                    `json:"supplier" binding:"omitempty,max=255"`
	Reason   string                    `json:"reason" binding:"omitempty,max=255"`
	Note     string                    `json:"note"`
	Items    []StockReceiptLineRequest `json:"items" binding:"required,dive"`
}

// StockReceiptFilterRequest represents receipt filter parameters
type StockReceiptFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
