package store

import (
	"context"
	"errors"
	"time"

	"github.com/amitsuman46/video-progress-tracker/internal/models"
)

// ErrNotFound is returned by point lookups when no record matches. Both
// backends translate their native miss (gorm.ErrRecordNotFound, Firestore
// empty query) into this so callers never see driver errors.
var ErrNotFound = errors.New("record not found")

// Firestore caps "in" membership queries at 10 elements; the relational
// backend chunks identically so both stores behave the same.
const inQueryChunkSize = 10

type CourseSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DriveFolderID *string   `json:"driveFolderId"`
	CreatedAt     time.Time `json:"createdAt"`
	SectionCount  int       `json:"sectionCount"`
}

type EntityRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VideoDetail is one video plus its lineage up the tree
type VideoDetail struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Order           int       `json:"order"`
	DurationSeconds *int      `json:"durationSeconds"`
	DriveFileID     string    `json:"driveFileId"`
	SubsectionID    string    `json:"subsectionId"`
	Subsection      EntityRef `json:"subsection"`
	Section         EntityRef `json:"section"`
}

type ProgressEntry struct {
	VideoID         string    `json:"videoId"`
	ProgressSeconds float64   `json:"progressSeconds"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ProgressState struct {
	ProgressSeconds float64 `json:"progressSeconds"`
	Completed       bool    `json:"completed"`
}

// Completion is one completed (user, video) pair, used for ranking
type Completion struct {
	UserID    string
	VideoID   string
	UpdatedAt time.Time
}

// Catalog is the persistent ordered course tree. Two interchangeable
// implementations exist (Postgres via GORM, Firestore); the sync
// orchestrator and the read API depend only on this interface.
type Catalog interface {
	ListCourses(ctx context.Context) ([]CourseSummary, error)
	// CourseTree returns the full ordered tree, ErrNotFound when absent
	CourseTree(ctx context.Context, courseID string) (*models.Course, error)
	CourseByID(ctx context.Context, courseID string) (*models.Course, error)
	CourseByDriveFolderID(ctx context.Context, driveFolderID string) (*models.Course, error)
	CreateCourse(ctx context.Context, title string, driveFolderID *string) (*models.Course, error)
	UpdateCourseTitle(ctx context.Context, courseID, title string) error

	SectionByDriveFolderID(ctx context.Context, courseID, driveFolderID string) (*models.Section, error)
	CreateSection(ctx context.Context, courseID, title string, order int, driveFolderID *string) (*models.Section, error)
	UpdateSectionMeta(ctx context.Context, sectionID, title string, order int) error

	// FindSubsection matches by (sectionID, driveFolderID) when the folder id
	// is non-nil, and by (sectionID, title, driveFolderId IS NULL) for the
	// synthetic loose-files case.
	FindSubsection(ctx context.Context, sectionID string, driveFolderID *string, title string) (*models.Subsection, error)
	CreateSubsection(ctx context.Context, sectionID, title string, order int, driveFolderID *string) (*models.Subsection, error)
	UpdateSubsectionMeta(ctx context.Context, subsectionID, title string, order int) error

	VideoByDriveFileID(ctx context.Context, subsectionID, driveFileID string) (*models.Video, error)
	CreateVideo(ctx context.Context, subsectionID, title, driveFileID string, order int) (*models.Video, error)
	UpdateVideoMeta(ctx context.Context, videoID, title string, order int) error

	// VideoWithLineage resolves a video scoped to a course, ErrNotFound when
	// the video is absent or belongs to another course
	VideoWithLineage(ctx context.Context, courseID, videoID string) (*VideoDetail, error)
	VideoIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

// Progress stores per-(user, video) watch state
type Progress interface {
	// Upsert replaces the row with a server-assigned timestamp (last write wins)
	Upsert(ctx context.Context, userID, videoID string, progressSeconds float64, completed bool) error
	ForUser(ctx context.Context, userID string) ([]ProgressEntry, error)
	One(ctx context.Context, userID, videoID string) (*ProgressEntry, error)
	// ForCourse maps videoID -> state for every video of the course the user
	// has progress on, batching membership queries in chunks of 10
	ForCourse(ctx context.Context, userID string, videoIDs []string) (map[string]ProgressState, error)
	// CompletionsForVideos returns all completed rows across users for the
	// given videos, chunked the same way
	CompletionsForVideos(ctx context.Context, videoIDs []string) ([]Completion, error)
}

// chunkIDs splits ids into groups of at most inQueryChunkSize
func chunkIDs(ids []string) [][]string {
	var out [][]string
	for len(ids) > inQueryChunkSize {
		out = append(out, ids[:inQueryChunkSize])
		ids = ids[inQueryChunkSize:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
