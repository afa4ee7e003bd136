package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles listing orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
	}
	if filter.Status != "" {
		status, err := enum.ParseOrderStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Status = &status
	}
	if filter.CustomerID != "" {
		if id, err := uuid.Parse(filter.CustomerID); err == nil {
			params.CustomerID = &id
		}
	}
	params.StartDate, params.EndDate = dateRange(filter.StartDate, filter.EndDate)

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// Create handles creating an order. Completed orders deduct stock immediately.
func (h *OrderHandler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		Items:          req.Items,
		OrderDiscount:  req.OrderDiscount,
		Status:         req.Status,
		Date:           req.Date,
		PaymentMethod:  req.PaymentMethod,
		ReceivedAmount: req.ReceivedAmount,
		PaymentHistory: req.PaymentHistory,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		TableID:        req.TableID,
		ShiftID:        req.ShiftID,
		Note:           req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles getting a single order
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// Update handles merging fields into an order
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, &service.UpdateOrderInput{
		Items:         req.Items,
		OrderDiscount: req.OrderDiscount,
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		TableID:       req.TableID,
		ShiftID:       req.ShiftID,
		Note:          req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order updated successfully", order)
}

// Delete handles deleting an order
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Settle handles paying a pending order
func (h *OrderHandler) Settle(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request.SettleOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	order, err := h.orderService.SettleOrder(c.Request.Context(), id, &service.PaymentInput{
		Method:         req.Method,
		Amount:         req.Amount,
		ReceivedAmount: req.ReceivedAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order settled successfully", order)
}

// Cancel handles cancelling an order
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}
