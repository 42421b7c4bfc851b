package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/database"
	"github.com/amitsuman46/video-progress-tracker/internal/models"
	"github.com/amitsuman46/video-progress-tracker/internal/services"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
	apperrors "github.com/amitsuman46/video-progress-tracker/pkg/errors"
	"github.com/amitsuman46/video-progress-tracker/pkg/logger"
)

const treeCacheTTL = 5 * time.Minute

func treeCacheKey(courseID string) string {
	return "course:tree:" + courseID
}

type CourseHandler struct {
	catalog     store.Catalog
	cache       *database.Cache
	leaderboard *services.Leaderboard
}

func NewCourseHandler(catalog store.Catalog, cache *database.Cache, leaderboard *services.Leaderboard) *CourseHandler {
	return &CourseHandler{catalog: catalog, cache: cache, leaderboard: leaderboard}
}

// ListCourses returns every course with its section count
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		c.Error(apperrors.Internal("Failed to list courses"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetCourseTree returns the full ordered tree for one course. Trees only
// change on sync, so responses are served through Redis when available.
func (h *CourseHandler) GetCourseTree(c *gin.Context) {
	courseID := c.Param("id")
	ctx := c.Request.Context()

	var cached models.Course
	found, err := h.cache.Get(ctx, treeCacheKey(courseID), &cached)
	if err != nil {
		logger.Warn().Err(err).Str("courseId", courseID).Msg("Tree cache read failed")
	}
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	tree, err := h.catalog.CourseTree(ctx, courseID)
	if err == store.ErrNotFound {
		c.Error(apperrors.NotFound("Course not found"))
		return
	}
	if err != nil {
		c.Error(apperrors.Internal("Failed to load course"))
		return
	}

	if err := h.cache.Set(ctx, treeCacheKey(courseID), tree, treeCacheTTL); err != nil {
		logger.Warn().Err(err).Str("courseId", courseID).Msg("Tree cache write failed")
	}

	c.JSON(http.StatusOK, tree)
}

// GetVideo returns one video with its subsection and section lineage,
// scoped to the course in the path
func (h *CourseHandler) GetVideo(c *gin.Context) {
	detail, err := h.catalog.VideoWithLineage(c.Request.Context(), c.Param("id"), c.Param("videoId"))
	if err == store.ErrNotFound {
		c.Error(apperrors.NotFound("Video not found"))
		return
	}
	if err != nil {
		c.Error(apperrors.Internal("Failed to load video"))
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetLeaderboard returns the completion ranking for a course
func (h *CourseHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboard.ForCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(apperrors.Internal("Failed to compute leaderboard"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
