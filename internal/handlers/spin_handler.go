package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artifactng/wheelspin-backend/internal/services"
)

// SpinHandler handles spin redemption HTTP requests
type SpinHandler struct {
	redemptionService services.RedemptionService
}

// NewSpinHandler creates a new SpinHandler
func NewSpinHandler(redemptionService services.RedemptionService) *SpinHandler {
	return &SpinHandler{redemptionService: redemptionService}
}

// SpinRequest is the body of POST /spin
type SpinRequest struct {
	TicketCode string `json:"ticketCode" binding:"required"`
}

// Spin handles POST /spin. It spends the ticket on exactly one spin and
// returns the outcome; repeated submissions of the same code get a 400.
func (h *SpinHandler) Spin(c *gin.Context) {
	var request SpinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticketCode is required"})
		return
	}

	result, err := h.redemptionService.Redeem(c.Request.Context(), request.TicketCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownTicket):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket code"})
		case errors.Is(err, services.ErrAlreadyRedeemed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This ticket has already been used"})
		case errors.Is(err, services.ErrPromotionEnded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The promotion has ended"})
		case errors.Is(err, services.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process spin: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
