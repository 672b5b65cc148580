package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-timetable/internal/availability"
	"github.com/nekogravitycat/court-timetable/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// GetTimetable returns the transformed availability of a venue for one date.
func (h *Handler) GetTimetable(c *gin.Context) {
	var uri GetTimetableRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var query TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	date, err := availability.ParseDate(query.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	table, err := h.service.GetTimetable(c.Request.Context(), uri.VenueID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTimetableResponse(table))
}
