package handlers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amitsuman46/video-progress-tracker/internal/database"
	"github.com/amitsuman46/video-progress-tracker/internal/middleware"
	"github.com/amitsuman46/video-progress-tracker/internal/models"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) *store.GormStore {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return store.NewGormStore(db)
}

// newTestRouter builds a gin engine with the error translator and a stub
// identity so handlers can be exercised without a live token verifier
func newTestRouter(uid string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uid)
		c.Next()
	})
	return r
}

// seedVideo creates a minimal course tree with one video and returns it
// along with its course
func seedVideo(t *testing.T, s *store.GormStore, driveFileID string) (*models.Course, *models.Video) {
	ctx := context.Background()
	folderID := "root-" + driveFileID
	course, err := s.CreateCourse(ctx, "Course", &folderID)
	require.NoError(t, err)
	secFolder := "sec-" + driveFileID
	section, err := s.CreateSection(ctx, course.ID, "01. Basics", 0, &secFolder)
	require.NoError(t, err)
	sub, err := s.CreateSubsection(ctx, section.ID, "01. Basics", 0, nil)
	require.NoError(t, err)
	video, err := s.CreateVideo(ctx, sub.ID, "Intro", driveFileID, 0)
	require.NoError(t, err)
	return course, video
}
