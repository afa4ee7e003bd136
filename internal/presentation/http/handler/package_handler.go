package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// PackageHandler handles treatment package requests
type PackageHandler struct {
	packages *service.PackageService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(packages *service.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// List returns a customer's packages. active=true hides exhausted ones.
func (h *PackageHandler) List(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		response.BadRequest(c, "customer_id query parameter is required")
		return
	}
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))

	pkgs, err := h.packages.ListCustomerPackages(c.Request.Context(), customerID, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Packages retrieved successfully", pkgs)
}

// ForService finds the customer's active package that covers a service.
// data is null when there is none.
func (h *PackageHandler) ForService(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		response.BadRequest(c, "customer_id query parameter is required")
		return
	}
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		response.BadRequest(c, "service_id query parameter is required")
		return
	}

	pkg, err := h.packages.GetPackageForService(c.Request.Context(), customerID, serviceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Package lookup completed", pkg)
}

func (h *PackageHandler) Use(c *gin.Context) {
	h.changeSession(c, h.packages.UseSession, "Session used")
}

func (h *PackageHandler) Return(c *gin.Context) {
	h.changeSession(c, h.packages.ReturnSession, "Session returned")
}

func (h *PackageHandler) changeSession(
	c *gin.Context,
	apply func(ctx context.Context, id uuid.UUID, n int) (*entity.CustomerTreatmentPackage, error),
	message string,
) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pkg, err := apply(c.Request.Context(), id, req.SessionNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	// the ledger ignores unknown packages
	if pkg == nil {
		response.NotFound(c, "Package not found")
		return
	}

	response.OK(c, message, pkg)
}
