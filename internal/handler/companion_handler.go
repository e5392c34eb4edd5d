package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"focustimer/internal/companion"
	apperrors "focustimer/internal/errors"
	"focustimer/internal/focus"
)

type CompanionHandler struct {
	registry *focus.Registry
	logger   *slog.Logger
}

func NewCompanionHandler(registry *focus.Registry, logger *slog.Logger) *CompanionHandler {
	return &CompanionHandler{registry: registry, logger: logger}
}

func (h *CompanionHandler) Status(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"companion": ws.Mirror.Status()})
}

func (h *CompanionHandler) Open(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	if _, err := ws.Mirror.Open(c.Request.Context()); err != nil {
		writeError(c, companionError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"companion": ws.Mirror.Status()})
}

func (h *CompanionHandler) Close(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	if err := ws.Mirror.Close(); err != nil {
		writeError(c, companionError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"companion": ws.Mirror.Status()})
}

func (h *CompanionHandler) Interact(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	if err := ws.Mirror.Interact(); err != nil {
		writeError(c, companionError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"companion": ws.Mirror.Status()})
}

// Stream delivers the open companion surface as server-sent events. A client
// that goes away hides the surface, which closes the mirror.
func (h *CompanionHandler) Stream(c *gin.Context) {
	ws, ok := workspace(c, h.registry)
	if !ok {
		return
	}
	surface, ok := ws.Mirror.Surface().(*companion.StreamSurface)
	if !ok {
		writeError(c, companionError(companion.ErrNotOpen))
		return
	}
	if !surface.Attach() {
		writeError(c, apperrors.Conflict(apperrors.CodeCompanionStreaming, "companion stream already attached", nil))
		return
	}
	defer surface.Detach()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	clientGone := c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-surface.Done():
			c.SSEvent("close", gin.H{"surfaceId": surface.ID()})
			return false
		case frame := <-surface.Frames():
			c.SSEvent("frame", frame)
			return true
		}
	})
	if clientGone || ctx.Err() != nil {
		h.logger.Debug("companion stream disconnected", "surface", surface.ID())
		surface.Close()
	}
}

func companionError(err error) *apperrors.APIError {
	switch {
	case errors.Is(err, companion.ErrUnsupported):
		return apperrors.Unavailable(apperrors.CodeCompanionUnsupported, err.Error())
	case errors.Is(err, companion.ErrAlreadyOpen):
		return apperrors.Conflict(apperrors.CodeCompanionOpen, err.Error(), nil)
	case errors.Is(err, companion.ErrNotOpen):
		return apperrors.Conflict(apperrors.CodeCompanionClosed, err.Error(), nil)
	default:
		message := err.Error()
		if reason := errors.Unwrap(err); reason != nil {
			message = reason.Error()
		}
		return apperrors.New(http.StatusForbidden, apperrors.CodeCompanionDenied, message)
	}
}
