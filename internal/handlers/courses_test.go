package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitsuman46/video-progress-tracker/internal/models"
	"github.com/amitsuman46/video-progress-tracker/internal/services"
)

func TestGetCourseTreeNotFound(t *testing.T) {
	s := newTestStore(t)
	h := NewCourseHandler(s, nil, services.NewLeaderboard(s, s))
	r := newTestRouter("user-1")
	r.GET("/courses/:id", h.GetCourseTree)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/courses/nope", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCourseTreeReturnsNestedTree(t *testing.T) {
	s := newTestStore(t)
	course, video := seedVideo(t, s, "file-c1")

	h := NewCourseHandler(s, nil, services.NewLeaderboard(s, s))
	r := newTestRouter("user-1")
	r.GET("/courses/:id", h.GetCourseTree)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/courses/"+course.ID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Sections, 1)
	require.Len(t, got.Sections[0].Subsections, 1)
	require.Len(t, got.Sections[0].Subsections[0].Videos, 1)
	assert.Equal(t, video.ID, got.Sections[0].Subsections[0].Videos[0].ID)
	// Drive file ids stay server-side concerns but are part of the catalog row
	assert.Equal(t, "file-c1", got.Sections[0].Subsections[0].Videos[0].DriveFileID)
}

func TestGetVideoScopedToCourse(t *testing.T) {
	s := newTestStore(t)
	_, video := seedVideo(t, s, "file-c2")
	otherCourse, _ := seedVideo(t, s, "file-c3")

	h := NewCourseHandler(s, nil, services.NewLeaderboard(s, s))
	r := newTestRouter("user-1")
	r.GET("/courses/:id/videos/:videoId", h.GetVideo)

	// the video exists but belongs to a different course
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/courses/"+otherCourse.ID+"/videos/"+video.ID, nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCoursesIncludesSectionCount(t *testing.T) {
	s := newTestStore(t)
	course, _ := seedVideo(t, s, "file-c4")

	h := NewCourseHandler(s, nil, services.NewLeaderboard(s, s))
	r := newTestRouter("user-1")
	r.GET("/courses", h.ListCourses)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/courses", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Courses []struct {
			ID           string `json:"id"`
			SectionCount int    `json:"sectionCount"`
		} `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Courses, 1)
	assert.Equal(t, course.ID, got.Courses[0].ID)
	assert.Equal(t, 1, got.Courses[0].SectionCount)
}
