package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "focustimer/internal/errors"
	"focustimer/internal/focus"
	"focustimer/internal/middleware"
	"focustimer/internal/service"
)

type TimerHandler struct {
	registry *focus.Registry
}

type updateSettingsRequest struct {
	WorkSourceRef        *string  `json:"workSourceRef"`
	BreakSourceRef       *string  `json:"breakSourceRef"`
	WorkDurationMinutes  *float64 `json:"workDurationMinutes"`
	BreakDurationMinutes *float64 `json:"breakDurationMinutes"`
}

func NewTimerHandler(registry *focus.Registry) *TimerHandler {
	return &TimerHandler{registry: registry}
}

// workspace resolves the caller's workspace, writing the error response when it
// cannot.
func workspace(c *gin.Context, registry *focus.Registry) (*focus.Workspace, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		writeUnauthorized(c)
		return nil, false
	}
	ws, apiErr := registry.Get(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return nil, false
	}
	return ws, true
}

func (h *TimerHandler) GetState(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ws.Controller.View()})
}

func (h *TimerHandler) Start(c *gin.Context) {
	h.transition(c, (*focus.Controller).Start)
}

func (h *TimerHandler) Pause(c *gin.Context) {
	h.transition(c, (*focus.Controller).Pause)
}

func (h *TimerHandler) Resume(c *gin.Context) {
	h.transition(c, (*focus.Controller).Resume)
}

func (h *TimerHandler) Switch(c *gin.Context) {
	h.transition(c, (*focus.Controller).Switch)
}

func (h *TimerHandler) Stop(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	state, record, apiErr := ws.Controller.Stop(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "record": record})
}

func (h *TimerHandler) GetSettings(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": ws.Controller.Settings()})
}

func (h *TimerHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	state, apiErr := ws.Controller.UpdateSettings(c.Request.Context(), service.UpdateSettingsInput{
		WorkSourceRef:        req.WorkSourceRef,
		BreakSourceRef:       req.BreakSourceRef,
		WorkDurationMinutes:  req.WorkDurationMinutes,
		BreakDurationMinutes: req.BreakDurationMinutes,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": state.Settings})
}

func (h *TimerHandler) transition(c *gin.Context, op func(*focus.Controller, context.Context) (focus.View, *apperrors.APIError)) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	state, apiErr := op(ws.Controller, c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
