package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"focustimer/internal/video"
)

type VideoHandler struct{}

func NewVideoHandler() *VideoHandler {
	return &VideoHandler{}
}

// Resolve reports the identifier a source reference points at. An unresolvable
// reference is not an error: videoId is null.
func (h *VideoHandler) Resolve(c *gin.Context) {
	videoID, ok := video.ResolveID(c.Query("ref"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"videoId": nil, "embedUrl": nil})
		return
	}

	start, _ := strconv.Atoi(c.Query("start"))
	embedURL := video.EmbedURL(videoID, video.EmbedOptions{
		EnableJSAPI:  true,
		Loop:         true,
		HideControls: true,
		StartSeconds: start,
	})
	c.JSON(http.StatusOK, gin.H{"videoId": videoID, "embedUrl": embedURL})
}
