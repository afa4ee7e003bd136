package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	catalogue *service.CatalogueService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogue *service.CatalogueService) *ProductHandler {
	return &ProductHandler{catalogue: catalogue}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
	}
	if filter.ProductType != "" {
		t, err := enum.ParseProductType(filter.ProductType)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.ProductType = &t
	}

	result, err := h.catalogue.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalogue.CreateProduct(c.Request.Context(), &service.ProductInput{
		Name:              req.Name,
		Code:              req.Code,
		Price:             req.Price,
		CostPrice:         req.CostPrice,
		ProductType:       req.ProductType,
		TreatmentSessions: req.TreatmentSessions,
		SessionPlan:       req.SessionPlan,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogue.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalogue.UpdateProduct(c.Request.Context(), id, &service.UpdateProductInput{
		Name:              req.Name,
		Code:              req.Code,
		Price:             req.Price,
		CostPrice:         req.CostPrice,
		ProductType:       req.ProductType,
		TreatmentSessions: req.TreatmentSessions,
		SessionPlan:       req.SessionPlan,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}
