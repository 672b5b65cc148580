package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers schedule session routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/schedule-sessions")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)                            // List own sessions
		group.POST("", h.Open)                           // Open a session for venue + date
		group.GET("/:id", h.Get)                         // Session with current table and total
		group.POST("/:id/toggle", h.Toggle)              // Select or deselect one slot
		group.PUT("/:id/context", h.ChangeContext)       // Switch venue/date, clears selection
		group.DELETE("/:id/selection", h.ClearSelection) // Clear selection
		group.POST("/:id/checkout", h.Checkout)          // Hand off to booking creation
		group.DELETE("/:id", h.Delete)                   // Discard session
	}
}
