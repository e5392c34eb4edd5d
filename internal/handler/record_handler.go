package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"focustimer/internal/middleware"
	"focustimer/internal/service"
)

type RecordHandler struct {
	recordService *service.RecordService
	now           func() time.Time
}

type updateNoteRequest struct {
	Note *string `json:"note"`
}

func NewRecordHandler(recordService *service.RecordService, now func() time.Time) *RecordHandler {
	if now == nil {
		now = time.Now
	}
	return &RecordHandler{recordService: recordService, now: now}
}

func (h *RecordHandler) List(c *gin.Context) {
	records, apiErr := h.recordService.List(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *RecordHandler) Clear(c *gin.Context) {
	removed, apiErr := h.recordService.Clear(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *RecordHandler) Delete(c *gin.Context) {
	if apiErr := h.recordService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecordHandler) UpdateNote(c *gin.Context) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Note == nil {
		writeInvalidJSON(c)
		return
	}

	record, apiErr := h.recordService.UpdateNote(c.Request.Context(), middleware.UserID(c), c.Param("id"), *req.Note)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

func (h *RecordHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	filename, apiErr := h.recordService.Export(c.Request.Context(), middleware.UserID(c), &buf, h.now())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
