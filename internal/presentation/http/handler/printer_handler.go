package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus()
	response.OK(c, "Printer status retrieved", status)
}

// PrintKitchenOrder reprints the ticket of a kitchen order.
func (h *PrinterHandler) PrintKitchenOrder(c *gin.Context) {
	ticket, err := h.printerService.PrintKitchenOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		// The ticket was built but the printer failed
		if ticket != nil {
			response.OK(c, "Ticket generated but printing failed", gin.H{
				"ticket":  ticket,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Kitchen ticket printed successfully", gin.H{
		"ticket": ticket,
	})
}
