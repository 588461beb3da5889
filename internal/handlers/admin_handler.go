package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artifactng/wheelspin-backend/internal/services"
)

// AdminHandler handles admin reporting HTTP requests
type AdminHandler struct {
	reportService services.ReportService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(reportService services.ReportService) *AdminHandler {
	return &AdminHandler{reportService: reportService}
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.reportService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get promotion stats: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetWinningTickets handles GET /admin/winning-tickets
func (h *AdminHandler) GetWinningTickets(c *gin.Context) {
	tickets, err := h.reportService.GetWinningTickets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get winning tickets: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(tickets), "tickets": tickets})
}
