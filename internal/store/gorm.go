package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amitsuman46/video-progress-tracker/internal/models"
	"github.com/amitsuman46/video-progress-tracker/pkg/utils"
)

// GormStore implements Catalog and Progress over a relational database
// (Postgres in production, SQLite in tests).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Catalog ---

func (s *GormStore) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	var courses []models.Course
	if err := s.db.WithContext(ctx).Order("\"createdAt\" asc").Find(&courses).Error; err != nil {
		return nil, err
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Section{}).
			Where("\"courseId\" = ?", c.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, CourseSummary{
			ID:            c.ID,
			Title:         c.Title,
			DriveFolderID: c.DriveFolderID,
			CreatedAt:     c.CreatedAt,
			SectionCount:  int(count),
		})
	}
	return out, nil
}

func (s *GormStore) CourseTree(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" asc") }).
		Preload("Sections.Subsections", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" asc") }).
		Preload("Sections.Subsections.Videos", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" asc") }).
		First(&course, "id = ?", courseID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &course, nil
}

func (s *GormStore) CourseByID(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &course, nil
}

func (s *GormStore) CourseByDriveFolderID(ctx context.Context, driveFolderID string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Where("\"driveFolderId\" = ?", driveFolderID).
		First(&course).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &course, nil
}

func (s *GormStore) CreateCourse(ctx context.Context, title string, driveFolderID *string) (*models.Course, error) {
	course := models.Course{
		ID:            utils.GenerateID(),
		Title:         title,
		DriveFolderID: driveFolderID,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *GormStore) UpdateCourseTitle(ctx context.Context, courseID, title string) error {
	return s.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("title", title).Error
}

func (s *GormStore) SectionByDriveFolderID(ctx context.Context, courseID, driveFolderID string) (*models.Section, error) {
	var section models.Section
	err := s.db.WithContext(ctx).
		Where("\"courseId\" = ? AND \"driveFolderId\" = ?", courseID, driveFolderID).
		First(&section).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &section, nil
}

func (s *GormStore) CreateSection(ctx context.Context, courseID, title string, order int, driveFolderID *string) (*models.Section, error) {
	section := models.Section{
		ID:            utils.GenerateID(),
		CourseID:      courseID,
		Title:         title,
		Order:         order,
		DriveFolderID: driveFolderID,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *GormStore) UpdateSectionMeta(ctx context.Context, sectionID, title string, order int) error {
	return s.db.WithContext(ctx).Model(&models.Section{}).
		Where("id = ?", sectionID).
		Updates(map[string]interface{}{"title": title, "order": order}).Error
}

func (s *GormStore) FindSubsection(ctx context.Context, sectionID string, driveFolderID *string, title string) (*models.Subsection, error) {
	var sub models.Subsection
	q := s.db.WithContext(ctx).Where("\"sectionId\" = ?", sectionID)
	if driveFolderID != nil {
		q = q.Where("\"driveFolderId\" = ?", *driveFolderID)
	} else {
		q = q.Where("title = ? AND \"driveFolderId\" IS NULL", title)
	}
	if err := q.First(&sub).Error; err != nil {
		return nil, translateErr(err)
	}
	return &sub, nil
}

func (s *GormStore) CreateSubsection(ctx context.Context, sectionID, title string, order int, driveFolderID *string) (*models.Subsection, error) {
	sub := models.Subsection{
		ID:            utils.GenerateID(),
		SectionID:     sectionID,
		Title:         title,
		Order:         order,
		DriveFolderID: driveFolderID,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) UpdateSubsectionMeta(ctx context.Context, subsectionID, title string, order int) error {
	return s.db.WithContext(ctx).Model(&models.Subsection{}).
		Where("id = ?", subsectionID).
		Updates(map[string]interface{}{"title": title, "order": order}).Error
}

func (s *GormStore) VideoByDriveFileID(ctx context.Context, subsectionID, driveFileID string) (*models.Video, error) {
	var video models.Video
	err := s.db.WithContext(ctx).
		Where("\"subsectionId\" = ? AND \"driveFileId\" = ?", subsectionID, driveFileID).
		First(&video).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &video, nil
}

func (s *GormStore) CreateVideo(ctx context.Context, subsectionID, title, driveFileID string, order int) (*models.Video, error) {
	video := models.Video{
		ID:           utils.GenerateID(),
		SubsectionID: subsectionID,
		Title:        title,
		DriveFileID:  driveFileID,
		Order:        order,
		CreatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *GormStore) UpdateVideoMeta(ctx context.Context, videoID, title string, order int) error {
	return s.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", videoID).
		Updates(map[string]interface{}{"title": title, "order": order}).Error
}

func (s *GormStore) VideoWithLineage(ctx context.Context, courseID, videoID string) (*VideoDetail, error) {
	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, "id = ?", videoID).Error; err != nil {
		return nil, translateErr(err)
	}

	var sub models.Subsection
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", video.SubsectionID).Error; err != nil {
		return nil, translateErr(err)
	}

	var section models.Section
	if err := s.db.WithContext(ctx).First(&section, "id = ?", sub.SectionID).Error; err != nil {
		return nil, translateErr(err)
	}
	if section.CourseID != courseID {
		return nil, ErrNotFound
	}

	return &VideoDetail{
		ID:              video.ID,
		Title:           video.Title,
		Order:           video.Order,
		DurationSeconds: video.DurationSeconds,
		DriveFileID:     video.DriveFileID,
		SubsectionID:    sub.ID,
		Subsection:      EntityRef{ID: sub.ID, Title: sub.Title},
		Section:         EntityRef{ID: section.ID, Title: section.Title},
	}, nil
}

func (s *GormStore) VideoIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Video{}).
		Joins("JOIN subsections ON subsections.id = videos.\"subsectionId\"").
		Joins("JOIN sections ON sections.id = subsections.\"sectionId\"").
		Where("sections.\"courseId\" = ?", courseID).
		Pluck("videos.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// --- Progress ---

func (s *GormStore) Upsert(ctx context.Context, userID, videoID string, progressSeconds float64, completed bool) error {
	row := models.Progress{
		UserID:          userID,
		VideoID:         videoID,
		ProgressSeconds: progressSeconds,
		Completed:       completed,
		UpdatedAt:       time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "userId"}, {Name: "videoId"}},
		DoUpdates: clause.AssignmentColumns([]string{"progressSeconds", "completed", "updatedAt"}),
	}).Create(&row).Error
}

func (s *GormStore) ForUser(ctx context.Context, userID string) ([]ProgressEntry, error) {
	var rows []models.Progress
	if err := s.db.WithContext(ctx).Where("\"userId\" = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ProgressEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProgressEntry{
			VideoID:         r.VideoID,
			ProgressSeconds: r.ProgressSeconds,
			Completed:       r.Completed,
			UpdatedAt:       r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *GormStore) One(ctx context.Context, userID, videoID string) (*ProgressEntry, error) {
	var row models.Progress
	err := s.db.WithContext(ctx).
		Where("\"userId\" = ? AND \"videoId\" = ?", userID, videoID).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &ProgressEntry{
		VideoID:         row.VideoID,
		ProgressSeconds: row.ProgressSeconds,
		Completed:       row.Completed,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func (s *GormStore) ForCourse(ctx context.Context, userID string, videoIDs []string) (map[string]ProgressState, error) {
	out := make(map[string]ProgressState)
	for _, chunk := range chunkIDs(videoIDs) {
		var rows []models.Progress
		err := s.db.WithContext(ctx).
			Where("\"userId\" = ? AND \"videoId\" IN ?", userID, chunk).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out[r.VideoID] = ProgressState{ProgressSeconds: r.ProgressSeconds, Completed: r.Completed}
		}
	}
	return out, nil
}

func (s *GormStore) CompletionsForVideos(ctx context.Context, videoIDs []string) ([]Completion, error) {
	var out []Completion
	for _, chunk := range chunkIDs(videoIDs) {
		var rows []models.Progress
		err := s.db.WithContext(ctx).
			Where("completed = ? AND \"videoId\" IN ?", true, chunk).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, Completion{UserID: r.UserID, VideoID: r.VideoID, UpdatedAt: r.UpdatedAt})
		}
	}
	return out, nil
}
