package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer-related HTTP requests.
// Customers are created implicitly by orders.
type CustomerHandler struct {
	catalogue *service.CatalogueService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(catalogue *service.CatalogueService) *CustomerHandler {
	return &CustomerHandler{catalogue: catalogue}
}

// List handles listing customers
func (h *CustomerHandler) List(c *gin.Context) {
	var filter request.CustomerFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.catalogue.ListCustomers(c.Request.Context(), pageParams(filter.Page, filter.PerPage), filter.Search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Customers retrieved successfully", result)
}

// Get handles getting a single customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.catalogue.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// TableHandler handles dining table requests
type TableHandler struct {
	catalogue *service.CatalogueService
}

// NewTableHandler creates a new table handler
func NewTableHandler(catalogue *service.CatalogueService) *TableHandler {
	return &TableHandler{catalogue: catalogue}
}

// List handles listing tables
func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.catalogue.ListTables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tables retrieved successfully", tables)
}

// Create handles creating a table
func (h *TableHandler) Create(c *gin.Context) {
	var req request.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	table, err := h.catalogue.CreateTable(c.Request.Context(), req.Name, req.Seats)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Table created successfully", table)
}
