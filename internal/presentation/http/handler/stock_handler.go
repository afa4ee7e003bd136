package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// StockHandler serves one receipt kind. Routes mount one instance for
// stock-in and one for stock-out.
type StockHandler struct {
	stock *service.StockService
	kind  enum.ReceiptKind
}

// NewStockHandler creates a handler for receipts of the given kind
func NewStockHandler(stock *service.StockService, kind enum.ReceiptKind) *StockHandler {
	return &StockHandler{stock: stock, kind: kind}
}

func (h *StockHandler) label() string {
	if h.kind == enum.ReceiptKindOut {
		return "Stock-out receipt"
	}
	return "Stock-in receipt"
}

func toReceiptInput(req *request.StockReceiptRequest) *service.StockReceiptInput {
	in := &service.StockReceiptInput{
		Date:     req.Date,
		Supplier: req.Supplier,
		Reason:   req.Reason,
		Note:     req.Note,
		Items:    make([]service.StockReceiptLineInput, len(req.Items)),
	}
	for i, line := range req.Items {
		in.Items[i] = service.StockReceiptLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return in
}

func (h *StockHandler) List(c *gin.Context) {
	var filter request.StockReceiptFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.StockReceiptFilterParams{
		Kind:       h.kind,
		Pagination: pageParams(filter.Page, filter.PerPage),
	}
	params.StartDate, params.EndDate = dateRange(filter.StartDate, filter.EndDate)

	result, err := h.stock.ListReceipts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, h.label()+"s retrieved successfully", result)
}

// Create records a receipt and applies it to stock
func (h *StockHandler) Create(c *gin.Context) {
	var req request.StockReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.stock.CreateReceipt(c.Request.Context(), h.kind, toReceiptInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, h.label()+" created successfully", receipt)
}

func (h *StockHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.stock.GetReceipt(c.Request.Context(), h.kind, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.label()+" retrieved successfully", receipt)
}

// Update replaces a receipt's lines, reversing the old quantities first
func (h *StockHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request.StockReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.stock.UpdateReceipt(c.Request.Context(), h.kind, id, toReceiptInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.label()+" updated successfully", receipt)
}

// Delete removes a receipt and reverses its quantities
func (h *StockHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.stock.DeleteReceipt(c.Request.Context(), h.kind, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
