package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/database"
	"github.com/amitsuman46/video-progress-tracker/internal/services"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
	coursesync "github.com/amitsuman46/video-progress-tracker/internal/sync"
	apperrors "github.com/amitsuman46/video-progress-tracker/pkg/errors"
	"github.com/amitsuman46/video-progress-tracker/pkg/logger"
)

type AdminHandler struct {
	syncer      *coursesync.Syncer
	cache       *database.Cache
	leaderboard *services.Leaderboard
}

func NewAdminHandler(syncer *coursesync.Syncer, cache *database.Cache, leaderboard *services.Leaderboard) *AdminHandler {
	return &AdminHandler{syncer: syncer, cache: cache, leaderboard: leaderboard}
}

type syncRequest struct {
	DriveFolderID string `json:"driveFolderId" binding:"required"`
	Title         string `json:"title"`
}

// SyncCourse walks a Drive folder tree into the catalog, creating the course
// on first sight
func (h *AdminHandler) SyncCourse(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest("driveFolderId is required"))
		return
	}

	result, err := h.syncer.Run(c.Request.Context(), req.DriveFolderID, req.Title)
	if err != nil {
		logger.Error().Err(err).Str("driveFolderId", req.DriveFolderID).Msg("Course sync failed")
		c.Error(apperrors.Upstream("Course sync failed"))
		return
	}

	h.invalidate(c, result.CourseID)
	c.JSON(http.StatusOK, result)
}

// ResyncCourse re-walks an existing course from its stored root folder
func (h *AdminHandler) ResyncCourse(c *gin.Context) {
	result, err := h.syncer.Resync(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.Error(apperrors.NotFound("Course not found"))
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("courseId", c.Param("id")).Msg("Course resync failed")
		c.Error(apperrors.Upstream("Course resync failed"))
		return
	}

	h.invalidate(c, result.CourseID)
	c.JSON(http.StatusOK, result)
}

// invalidate drops cached views that a sync may have made stale
func (h *AdminHandler) invalidate(c *gin.Context, courseID string) {
	if err := h.cache.Delete(c.Request.Context(), treeCacheKey(courseID)); err != nil {
		logger.Warn().Err(err).Str("courseId", courseID).Msg("Tree cache invalidation failed")
	}
	h.leaderboard.Invalidate(courseID)
}
