package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers venue timetable routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/venues")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("/:id/timetable", h.GetTimetable) // Availability table for ?date=YYYY-MM-DD
	}
}
