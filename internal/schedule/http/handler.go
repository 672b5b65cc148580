package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-timetable/internal/auth"
	"github.com/nekogravitycat/court-timetable/internal/pkg/request"
	"github.com/nekogravitycat/court-timetable/internal/pkg/response"
	"github.com/nekogravitycat/court-timetable/internal/schedule"
)

type Handler struct {
	service schedule.Service
	now     func() time.Time
}

func NewHandler(service schedule.Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	// Users only ever see their own sessions
	filter := schedule.Filter{
		UserID:   auth.GetUserID(c),
		VenueID:  req.VenueID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	sessions, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		items[i] = NewSessionResponse(s)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Open(c *gin.Context) {
	var body OpenSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := body.Validate()
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.Open(c.Request.Context(), auth.GetUserID(c), body.VenueID, date, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewViewResponse(view))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	view, err := h.service.View(c.Request.Context(), uri.ID, auth.GetUserID(c), h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewViewResponse(view))
}

func (h *Handler) Toggle(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body ToggleSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	view, err := h.service.Toggle(c.Request.Context(), uri.ID, auth.GetUserID(c), body.SlotID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewViewResponse(view))
}

func (h *Handler) ChangeContext(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body ChangeContextRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := body.Validate()
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.ChangeContext(c.Request.Context(), uri.ID, auth.GetUserID(c), body.VenueID, date, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewViewResponse(view))
}

func (h *Handler) ClearSelection(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	view, err := h.service.Clear(c.Request.Context(), uri.ID, auth.GetUserID(c), h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewViewResponse(view))
}

func (h *Handler) Checkout(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), uri.ID, auth.GetUserID(c), auth.GetToken(c), h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewCheckoutResponse(result))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
