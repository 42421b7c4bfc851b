package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/store"
	apperrors "github.com/amitsuman46/video-progress-tracker/pkg/errors"
)

type ProgressHandler struct {
	catalog  store.Catalog
	progress store.Progress
}

func NewProgressHandler(catalog store.Catalog, progress store.Progress) *ProgressHandler {
	return &ProgressHandler{catalog: catalog, progress: progress}
}

// GetAll returns every progress row of the caller
func (h *ProgressHandler) GetAll(c *gin.Context) {
	entries, err := h.progress.ForUser(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		c.Error(apperrors.Internal("Failed to load progress"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": entries})
}

// GetOne returns the caller's state for one video. Unknown videos report
// zero progress instead of an error so players can call this unconditionally.
func (h *ProgressHandler) GetOne(c *gin.Context) {
	videoID := c.Query("videoId")
	if videoID == "" {
		c.Error(apperrors.BadRequest("videoId is required"))
		return
	}

	entry, err := h.progress.One(c.Request.Context(), c.GetString("userId"), videoID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusOK, gin.H{"progressSeconds": 0, "completed": false})
		return
	}
	if err != nil {
		c.Error(apperrors.Internal("Failed to load progress"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"progressSeconds": entry.ProgressSeconds, "completed": entry.Completed})
}

// GetForCourse maps videoId -> state for every video of a course the caller
// has touched
func (h *ProgressHandler) GetForCourse(c *gin.Context) {
	ctx := c.Request.Context()

	videoIDs, err := h.catalog.VideoIDsByCourse(ctx, c.Param("id"))
	if err != nil {
		c.Error(apperrors.Internal("Failed to load course videos"))
		return
	}

	states, err := h.progress.ForCourse(ctx, c.GetString("userId"), videoIDs)
	if err != nil {
		c.Error(apperrors.Internal("Failed to load progress"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": states})
}

type saveProgressRequest struct {
	VideoID         string   `json:"videoId" binding:"required"`
	ProgressSeconds *float64 `json:"progressSeconds" binding:"required"`
	Completed       bool     `json:"completed"`
}

// Save upserts the caller's state for one video. The completed flag is taken
// from the client verbatim; the server never infers completion from position.
func (h *ProgressHandler) Save(c *gin.Context) {
	var req saveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest("videoId and progressSeconds are required"))
		return
	}

	userID := c.GetString("userId")
	if err := h.progress.Upsert(c.Request.Context(), userID, req.VideoID, *req.ProgressSeconds, req.Completed); err != nil {
		c.Error(apperrors.Internal("Failed to save progress"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videoId":         req.VideoID,
		"progressSeconds": *req.ProgressSeconds,
		"completed":       req.Completed,
	})
}
