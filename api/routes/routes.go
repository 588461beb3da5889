package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/artifactng/wheelspin-backend/internal/config"
	"github.com/artifactng/wheelspin-backend/internal/handlers"
	"github.com/artifactng/wheelspin-backend/internal/middleware"
)

// Handlers bundles the constructed handlers for router wiring.
type Handlers struct {
	Spin   *handlers.SpinHandler
	Ticket *handlers.TicketHandler
	Admin  *handlers.AdminHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/spin", h.Spin.Spin)
		public.POST("/verify-ticket", h.Ticket.VerifyTicket)
	}

	// Routes guarded by the shared API secret
	protected := router.Group("/api/v1")
	protected.Use(middleware.APISecretMiddleware(cfg))
	{
		protected.POST("/register-ticket", h.Ticket.RegisterTickets)

		admin := protected.Group("/admin")
		{
			admin.GET("/stats", h.Admin.GetStats)
			admin.GET("/winning-tickets", h.Admin.GetWinningTickets)
		}
	}

	return router
}
