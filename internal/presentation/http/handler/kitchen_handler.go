package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// KitchenHandler handles kitchen ticket requests
type KitchenHandler struct {
	kitchen *service.KitchenService
}

// NewKitchenHandler creates a new kitchen handler
func NewKitchenHandler(kitchen *service.KitchenService) *KitchenHandler {
	return &KitchenHandler{kitchen: kitchen}
}

// List handles listing kitchen tickets, optionally by status or order
func (h *KitchenHandler) List(c *gin.Context) {
	params := &repository.KitchenOrderFilterParams{OrderID: optionalUUIDQuery(c, "order_id")}
	if raw := c.Query("status"); raw != "" {
		status, err := enum.ParseKitchenStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Status = &status
	}

	tickets, err := h.kitchen.ListKitchenOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Kitchen orders retrieved successfully", tickets)
}

// Create sends cart lines of an order to the kitchen
func (h *KitchenHandler) Create(c *gin.Context) {
	var req request.CreateKitchenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ko, err := h.kitchen.CreateKitchenOrder(c.Request.Context(), req.OrderID, req.Items)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Kitchen order created successfully", ko)
}

func (h *KitchenHandler) Get(c *gin.Context) {
	ko, err := h.kitchen.GetKitchenOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Kitchen order retrieved successfully", ko)
}

// UpdateStatus advances a ticket to its next status
func (h *KitchenHandler) UpdateStatus(c *gin.Context) {
	var req request.UpdateKitchenStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	status, err := enum.ParseKitchenStatus(req.Status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ko, err := h.kitchen.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Kitchen status updated successfully", ko)
}

// UpdateItems replaces a ticket's items, cascading when everything is cancelled
func (h *KitchenHandler) UpdateItems(c *gin.Context) {
	var req request.UpdateKitchenItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.kitchen.UpdateItems(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Kitchen items updated successfully"
	if result.Deleted {
		message = "Kitchen order cancelled"
	}
	response.OK(c, message, result)
}

// AutoServe marks every ticket of a paid order as served
func (h *KitchenHandler) AutoServe(c *gin.Context) {
	orderID, ok := uuidParam(c, "order_id")
	if !ok {
		return
	}

	n, err := h.kitchen.AutoServeOnPayment(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Kitchen orders served", gin.H{"served": n})
}

// ClearServed deletes every served ticket
func (h *KitchenHandler) ClearServed(c *gin.Context) {
	n, err := h.kitchen.ClearServed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Served kitchen orders cleared", gin.H{"deleted": n})
}
