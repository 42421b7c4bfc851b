package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/drive"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
	"github.com/amitsuman46/video-progress-tracker/internal/streamtoken"
	apperrors "github.com/amitsuman46/video-progress-tracker/pkg/errors"
	"github.com/amitsuman46/video-progress-tracker/pkg/logger"
)

type StreamHandler struct {
	catalog      store.Catalog
	tokens       *streamtoken.Store
	drive        drive.Client
	publicAPIURL string
}

func NewStreamHandler(catalog store.Catalog, tokens *streamtoken.Store, driveClient drive.Client, publicAPIURL string) *StreamHandler {
	return &StreamHandler{catalog: catalog, tokens: tokens, drive: driveClient, publicAPIURL: publicAPIURL}
}

// GetStreamURL mints a short-lived token and returns the tokenized stream
// URL for one video. The Drive file id itself never reaches the client.
func (h *StreamHandler) GetStreamURL(c *gin.Context) {
	courseID := c.Param("id")
	videoID := c.Param("videoId")

	detail, err := h.catalog.VideoWithLineage(c.Request.Context(), courseID, videoID)
	if err == store.ErrNotFound {
		c.Error(apperrors.NotFound("Video not found"))
		return
	}
	if err != nil {
		c.Error(apperrors.Internal("Failed to load video"))
		return
	}

	token := h.tokens.Create(detail.DriveFileID)
	url := fmt.Sprintf("%s/api/courses/%s/videos/%s/stream?t=%s", h.publicAPIURL, courseID, videoID, token)

	c.JSON(http.StatusOK, gin.H{
		"url":       url,
		"expiresIn": int(streamtoken.DefaultTTL.Seconds()),
	})
}

// Stream proxies video bytes from Drive. The token in ?t= must resolve to
// the exact Drive file the addressed video points at; Range headers are
// passed through and 206 responses mirrored back.
func (h *StreamHandler) Stream(c *gin.Context) {
	token := c.Query("t")
	if token == "" {
		c.Error(apperrors.BadRequest("Stream token is required"))
		return
	}

	fileID, ok := h.tokens.Lookup(token)
	if !ok {
		c.Error(apperrors.Forbidden("Stream token is invalid or expired"))
		return
	}

	detail, err := h.catalog.VideoWithLineage(c.Request.Context(), c.Param("id"), c.Param("videoId"))
	if err == store.ErrNotFound || (err == nil && detail.DriveFileID != fileID) {
		c.Error(apperrors.NotFound("Video not found"))
		return
	}
	if err != nil {
		c.Error(apperrors.Internal("Failed to load video"))
		return
	}

	stream, err := h.drive.OpenStream(c.Request.Context(), fileID, c.GetHeader("Range"))
	if err != nil {
		logger.Error().Err(err).Str("videoId", detail.ID).Msg("Upstream stream open failed")
		c.Error(apperrors.Upstream("Failed to open video stream"))
		return
	}
	defer stream.Body.Close()

	c.Header("Accept-Ranges", "bytes")
	if stream.ContentType != "" {
		c.Header("Content-Type", stream.ContentType)
	}
	if stream.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(stream.ContentLength, 10))
	}

	status := http.StatusOK
	if stream.Partial {
		status = http.StatusPartialContent
		c.Header("Content-Range", stream.ContentRange)
	}
	c.Status(status)

	// Once bytes are flowing a failure can only be logged; headers are gone
	if _, err := io.Copy(c.Writer, stream.Body); err != nil {
		logger.Warn().Err(err).Str("videoId", detail.ID).Msg("Stream copy interrupted")
	}
}
