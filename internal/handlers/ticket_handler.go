package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artifactng/wheelspin-backend/internal/services"
)

// TicketHandler handles ticket registration and verification HTTP requests
type TicketHandler struct {
	ticketService services.TicketService
	spinBaseURL   string
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService services.TicketService, spinBaseURL string) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		spinBaseURL:   spinBaseURL,
	}
}

// RegisterTicketsRequest is the body of POST /register-ticket
type RegisterTicketsRequest struct {
	Tickets []string `json:"tickets" binding:"required"`
}

// RegisterTickets handles POST /register-ticket. The batch is all-or-nothing:
// one bad code rejects the whole request with the offending codes listed.
func (h *TicketHandler) RegisterTickets(c *gin.Context) {
	var request RegisterTicketsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tickets array is required"})
		return
	}

	tickets, err := h.ticketService.RegisterTickets(c.Request.Context(), request.Tickets)
	if err != nil {
		var dup *services.DuplicateTicketsError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Some tickets are already registered", "duplicates": dup.Codes})
		case errors.Is(err, services.ErrInvalidTicketCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register tickets: " + err.Error()})
		}
		return
	}

	registered := make([]gin.H, 0, len(tickets))
	for _, ticket := range tickets {
		registered = append(registered, gin.H{
			"code":    ticket.Code,
			"spinUrl": h.spinBaseURL + ticket.Code,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Tickets registered successfully", "tickets": registered})
}

// VerifyTicketRequest is the body of POST /verify-ticket
type VerifyTicketRequest struct {
	TicketCode string `json:"ticketCode" binding:"required"`
}

// VerifyTicket handles POST /verify-ticket. It reports whether a code exists
// and whether it still has its spin, without consuming anything.
func (h *TicketHandler) VerifyTicket(c *gin.Context) {
	var request VerifyTicketRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticketCode is required"})
		return
	}

	ticket, err := h.ticketService.VerifyTicket(c.Request.Context(), request.TicketCode)
	if err != nil {
		if errors.Is(err, services.ErrUnknownTicket) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify ticket: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":     ticket.Code,
		"redeemed": ticket.Redeemed,
		"outcome":  ticket.Outcome,
	})
}
