package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/amitsuman46/video-progress-tracker/internal/models"
	"github.com/amitsuman46/video-progress-tracker/pkg/utils"
)

const (
	collCourses     = "courses"
	collSections    = "sections"
	collSubsections = "subsections"
	collVideos      = "videos"
	collProgress    = "userProgress"
)

// FirestoreStore implements Catalog and Progress over Firestore documents.
// Observable behavior (ordering, upsert matching, batching) matches the
// relational backend.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Document shapes; field names mirror the JSON/API field names

type courseDoc struct {
	Title         string    `firestore:"title"`
	DriveFolderID *string   `firestore:"driveFolderId"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

type sectionDoc struct {
	CourseID      string    `firestore:"courseId"`
	Title         string    `firestore:"title"`
	Order         int       `firestore:"order"`
	DriveFolderID *string   `firestore:"driveFolderId"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

type subsectionDoc struct {
	SectionID     string    `firestore:"sectionId"`
	Title         string    `firestore:"title"`
	Order         int       `firestore:"order"`
	DriveFolderID *string   `firestore:"driveFolderId"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

type videoDoc struct {
	SubsectionID    string    `firestore:"subsectionId"`
	Title           string    `firestore:"title"`
	DriveFileID     string    `firestore:"driveFileId"`
	Order           int       `firestore:"order"`
	DurationSeconds *int      `firestore:"durationSeconds"`
	CreatedAt       time.Time `firestore:"createdAt"`
}

type progressDoc struct {
	UserID          string    `firestore:"userId"`
	VideoID         string    `firestore:"videoId"`
	ProgressSeconds float64   `firestore:"progressSeconds"`
	Completed       bool      `firestore:"completed"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

func firstDoc(ctx context.Context, q firestore.Query) (*firestore.DocumentSnapshot, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func allDocs(ctx context.Context, q firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()
	return iter.GetAll()
}

// --- Catalog ---

func (s *FirestoreStore) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	docs, err := allDocs(ctx, s.client.Collection(collCourses).OrderBy("createdAt", firestore.Asc))
	if err != nil {
		return nil, err
	}

	out := make([]CourseSummary, 0, len(docs))
	for _, doc := range docs {
		var c courseDoc
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		sections, err := allDocs(ctx, s.client.Collection(collSections).Where("courseId", "==", doc.Ref.ID))
		if err != nil {
			return nil, err
		}
		out = append(out, CourseSummary{
			ID:            doc.Ref.ID,
			Title:         c.Title,
			DriveFolderID: c.DriveFolderID,
			CreatedAt:     c.CreatedAt,
			SectionCount:  len(sections),
		})
	}
	return out, nil
}

func (s *FirestoreStore) CourseTree(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	sectionDocs, err := allDocs(ctx, s.client.Collection(collSections).
		Where("courseId", "==", courseID).OrderBy("order", firestore.Asc))
	if err != nil {
		return nil, err
	}

	course.Sections = make([]models.Section, 0, len(sectionDocs))
	for _, sd := range sectionDocs {
		var sec sectionDoc
		if err := sd.DataTo(&sec); err != nil {
			return nil, err
		}
		section := models.Section{
			ID:            sd.Ref.ID,
			CourseID:      courseID,
			Title:         sec.Title,
			Order:         sec.Order,
			DriveFolderID: sec.DriveFolderID,
			CreatedAt:     sec.CreatedAt,
		}

		subDocs, err := allDocs(ctx, s.client.Collection(collSubsections).
			Where("sectionId", "==", sd.Ref.ID).OrderBy("order", firestore.Asc))
		if err != nil {
			return nil, err
		}
		section.Subsections = make([]models.Subsection, 0, len(subDocs))
		for _, ssd := range subDocs {
			var sub subsectionDoc
			if err := ssd.DataTo(&sub); err != nil {
				return nil, err
			}
			subsection := models.Subsection{
				ID:            ssd.Ref.ID,
				SectionID:     sd.Ref.ID,
				Title:         sub.Title,
				Order:         sub.Order,
				DriveFolderID: sub.DriveFolderID,
				CreatedAt:     sub.CreatedAt,
			}

			videoDocs, err := allDocs(ctx, s.client.Collection(collVideos).
				Where("subsectionId", "==", ssd.Ref.ID).OrderBy("order", firestore.Asc))
			if err != nil {
				return nil, err
			}
			subsection.Videos = make([]models.Video, 0, len(videoDocs))
			for _, vd := range videoDocs {
				var v videoDoc
				if err := vd.DataTo(&v); err != nil {
					return nil, err
				}
				subsection.Videos = append(subsection.Videos, models.Video{
					ID:              vd.Ref.ID,
					SubsectionID:    ssd.Ref.ID,
					Title:           v.Title,
					DriveFileID:     v.DriveFileID,
					Order:           v.Order,
					DurationSeconds: v.DurationSeconds,
					CreatedAt:       v.CreatedAt,
				})
			}
			section.Subsections = append(section.Subsections, subsection)
		}
		course.Sections = append(course.Sections, section)
	}
	return course, nil
}

func (s *FirestoreStore) CourseByID(ctx context.Context, courseID string) (*models.Course, error) {
	doc, err := s.client.Collection(collCourses).Doc(courseID).Get(ctx)
	if err != nil {
		return nil, ErrNotFound
	}
	var c courseDoc
	if err := doc.DataTo(&c); err != nil {
		return nil, err
	}
	return &models.Course{
		ID:            doc.Ref.ID,
		Title:         c.Title,
		DriveFolderID: c.DriveFolderID,
		CreatedAt:     c.CreatedAt,
	}, nil
}

func (s *FirestoreStore) CourseByDriveFolderID(ctx context.Context, driveFolderID string) (*models.Course, error) {
	doc, err := firstDoc(ctx, s.client.Collection(collCourses).Where("driveFolderId", "==", driveFolderID))
	if err != nil {
		return nil, err
	}
	var c courseDoc
	if err := doc.DataTo(&c); err != nil {
		return nil, err
	}
	return &models.Course{
		ID:            doc.Ref.ID,
		Title:         c.Title,
		DriveFolderID: c.DriveFolderID,
		CreatedAt:     c.CreatedAt,
	}, nil
}

func (s *FirestoreStore) CreateCourse(ctx context.Context, title string, driveFolderID *string) (*models.Course, error) {
	course := models.Course{
		ID:            utils.GenerateID(),
		Title:         title,
		DriveFolderID: driveFolderID,
		CreatedAt:     time.Now(),
	}
	_, err := s.client.Collection(collCourses).Doc(course.ID).Set(ctx, courseDoc{
		Title:         course.Title,
		DriveFolderID: course.DriveFolderID,
		CreatedAt:     course.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *FirestoreStore) UpdateCourseTitle(ctx context.Context, courseID, title string) error {
	_, err := s.client.Collection(collCourses).Doc(courseID).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
	})
	return err
}

func (s *FirestoreStore) SectionByDriveFolderID(ctx context.Context, courseID, driveFolderID string) (*models.Section, error) {
	doc, err := firstDoc(ctx, s.client.Collection(collSections).
		Where("courseId", "==", courseID).
		Where("driveFolderId", "==", driveFolderID))
	if err != nil {
		return nil, err
	}
	var sec sectionDoc
	if err := doc.DataTo(&sec); err != nil {
		return nil, err
	}
	return &models.Section{
		ID:            doc.Ref.ID,
		CourseID:      sec.CourseID,
		Title:         sec.Title,
		Order:         sec.Order,
		DriveFolderID: sec.DriveFolderID,
		CreatedAt:     sec.CreatedAt,
	}, nil
}

func (s *FirestoreStore) CreateSection(ctx context.Context, courseID, title string, order int, driveFolderID *string) (*models.Section, error) {
	section := models.Section{
		ID:            utils.GenerateID(),
		CourseID:      courseID,
		Title:         title,
		Order:         order,
		DriveFolderID: driveFolderID,
		CreatedAt:     time.Now(),
	}
	_, err := s.client.Collection(collSections).Doc(section.ID).Set(ctx, sectionDoc{
		CourseID:      section.CourseID,
		Title:         section.Title,
		Order:         section.Order,
		DriveFolderID: section.DriveFolderID,
		CreatedAt:     section.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *FirestoreStore) UpdateSectionMeta(ctx context.Context, sectionID, title string, order int) error {
	_, err := s.client.Collection(collSections).Doc(sectionID).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "order", Value: order},
	})
	return err
}

func (s *FirestoreStore) FindSubsection(ctx context.Context, sectionID string, driveFolderID *string, title string) (*models.Subsection, error) {
	if driveFolderID != nil {
		doc, err := firstDoc(ctx, s.client.Collection(collSubsections).
			Where("sectionId", "==", sectionID).
			Where("driveFolderId", "==", *driveFolderID))
		if err != nil {
			return nil, err
		}
		return subsectionFromDoc(doc)
	}

	// Synthetic case: match by title among docs with a null folder id
	docs, err := allDocs(ctx, s.client.Collection(collSubsections).
		Where("sectionId", "==", sectionID).
		Where("title", "==", title))
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		var sub subsectionDoc
		if err := doc.DataTo(&sub); err != nil {
			return nil, err
		}
		if sub.DriveFolderID == nil {
			return subsectionFromDoc(doc)
		}
	}
	return nil, ErrNotFound
}

func subsectionFromDoc(doc *firestore.DocumentSnapshot) (*models.Subsection, error) {
	var sub subsectionDoc
	if err := doc.DataTo(&sub); err != nil {
		return nil, err
	}
	return &models.Subsection{
		ID:            doc.Ref.ID,
		SectionID:     sub.SectionID,
		Title:         sub.Title,
		Order:         sub.Order,
		DriveFolderID: sub.DriveFolderID,
		CreatedAt:     sub.CreatedAt,
	}, nil
}

func (s *FirestoreStore) CreateSubsection(ctx context.Context, sectionID, title string, order int, driveFolderID *string) (*models.Subsection, error) {
	sub := models.Subsection{
		ID:            utils.GenerateID(),
		SectionID:     sectionID,
		Title:         title,
		Order:         order,
		DriveFolderID: driveFolderID,
		CreatedAt:     time.Now(),
	}
	_, err := s.client.Collection(collSubsections).Doc(sub.ID).Set(ctx, subsectionDoc{
		SectionID:     sub.SectionID,
		Title:         sub.Title,
		Order:         sub.Order,
		DriveFolderID: sub.DriveFolderID,
		CreatedAt:     sub.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *FirestoreStore) UpdateSubsectionMeta(ctx context.Context, subsectionID, title string, order int) error {
	_, err := s.client.Collection(collSubsections).Doc(subsectionID).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "order", Value: order},
	})
	return err
}

func (s *FirestoreStore) VideoByDriveFileID(ctx context.Context, subsectionID, driveFileID string) (*models.Video, error) {
	doc, err := firstDoc(ctx, s.client.Collection(collVideos).
		Where("subsectionId", "==", subsectionID).
		Where("driveFileId", "==", driveFileID))
	if err != nil {
		return nil, err
	}
	var v videoDoc
	if err := doc.DataTo(&v); err != nil {
		return nil, err
	}
	return &models.Video{
		ID:              doc.Ref.ID,
		SubsectionID:    v.SubsectionID,
		Title:           v.Title,
		DriveFileID:     v.DriveFileID,
		Order:           v.Order,
		DurationSeconds: v.DurationSeconds,
		CreatedAt:       v.CreatedAt,
	}, nil
}

func (s *FirestoreStore) CreateVideo(ctx context.Context, subsectionID, title, driveFileID string, order int) (*models.Video, error) {
	video := models.Video{
		ID:           utils.GenerateID(),
		SubsectionID: subsectionID,
		Title:        title,
		DriveFileID:  driveFileID,
		Order:        order,
		CreatedAt:    time.Now(),
	}
	_, err := s.client.Collection(collVideos).Doc(video.ID).Set(ctx, videoDoc{
		SubsectionID: video.SubsectionID,
		Title:        video.Title,
		DriveFileID:  video.DriveFileID,
		Order:        video.Order,
		CreatedAt:    video.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *FirestoreStore) UpdateVideoMeta(ctx context.Context, videoID, title string, order int) error {
	_, err := s.client.Collection(collVideos).Doc(videoID).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "order", Value: order},
	})
	return err
}

func (s *FirestoreStore) VideoWithLineage(ctx context.Context, courseID, videoID string) (*VideoDetail, error) {
	vdoc, err := s.client.Collection(collVideos).Doc(videoID).Get(ctx)
	if err != nil {
		return nil, ErrNotFound
	}
	var v videoDoc
	if err := vdoc.DataTo(&v); err != nil {
		return nil, err
	}

	sdoc, err := s.client.Collection(collSubsections).Doc(v.SubsectionID).Get(ctx)
	if err != nil {
		return nil, ErrNotFound
	}
	var sub subsectionDoc
	if err := sdoc.DataTo(&sub); err != nil {
		return nil, err
	}

	secdoc, err := s.client.Collection(collSections).Doc(sub.SectionID).Get(ctx)
	if err != nil {
		return nil, ErrNotFound
	}
	var sec sectionDoc
	if err := secdoc.DataTo(&sec); err != nil {
		return nil, err
	}
	if sec.CourseID != courseID {
		return nil, ErrNotFound
	}

	return &VideoDetail{
		ID:              vdoc.Ref.ID,
		Title:           v.Title,
		Order:           v.Order,
		DurationSeconds: v.DurationSeconds,
		DriveFileID:     v.DriveFileID,
		SubsectionID:    sdoc.Ref.ID,
		Subsection:      EntityRef{ID: sdoc.Ref.ID, Title: sub.Title},
		Section:         EntityRef{ID: secdoc.Ref.ID, Title: sec.Title},
	}, nil
}

func (s *FirestoreStore) VideoIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	sectionDocs, err := allDocs(ctx, s.client.Collection(collSections).Where("courseId", "==", courseID))
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, sd := range sectionDocs {
		subDocs, err := allDocs(ctx, s.client.Collection(collSubsections).Where("sectionId", "==", sd.Ref.ID))
		if err != nil {
			return nil, err
		}
		for _, ssd := range subDocs {
			videoDocs, err := allDocs(ctx, s.client.Collection(collVideos).Where("subsectionId", "==", ssd.Ref.ID))
			if err != nil {
				return nil, err
			}
			for _, vd := range videoDocs {
				ids = append(ids, vd.Ref.ID)
			}
		}
	}
	return ids, nil
}

// --- Progress ---

func progressDocID(userID, videoID string) string {
	return fmt.Sprintf("%s_%s", userID, videoID)
}

func (s *FirestoreStore) Upsert(ctx context.Context, userID, videoID string, progressSeconds float64, completed bool) error {
	_, err := s.client.Collection(collProgress).Doc(progressDocID(userID, videoID)).Set(ctx, progressDoc{
		UserID:          userID,
		VideoID:         videoID,
		ProgressSeconds: progressSeconds,
		Completed:       completed,
		UpdatedAt:       time.Now(),
	})
	return err
}

func (s *FirestoreStore) ForUser(ctx context.Context, userID string) ([]ProgressEntry, error) {
	docs, err := allDocs(ctx, s.client.Collection(collProgress).Where("userId", "==", userID))
	if err != nil {
		return nil, err
	}

	out := make([]ProgressEntry, 0, len(docs))
	for _, doc := range docs {
		var p progressDoc
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		out = append(out, ProgressEntry{
			VideoID:         p.VideoID,
			ProgressSeconds: p.ProgressSeconds,
			Completed:       p.Completed,
			UpdatedAt:       p.UpdatedAt,
		})
	}
	return out, nil
}

func (s *FirestoreStore) One(ctx context.Context, userID, videoID string) (*ProgressEntry, error) {
	doc, err := s.client.Collection(collProgress).Doc(progressDocID(userID, videoID)).Get(ctx)
	if err != nil {
		return nil, ErrNotFound
	}
	var p progressDoc
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	return &ProgressEntry{
		VideoID:         p.VideoID,
		ProgressSeconds: p.ProgressSeconds,
		Completed:       p.Completed,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func (s *FirestoreStore) ForCourse(ctx context.Context, userID string, videoIDs []string) (map[string]ProgressState, error) {
	out := make(map[string]ProgressState)
	for _, chunk := range chunkIDs(videoIDs) {
		docs, err := allDocs(ctx, s.client.Collection(collProgress).
			Where("userId", "==", userID).
			Where("videoId", "in", chunk))
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			var p progressDoc
			if err := doc.DataTo(&p); err != nil {
				return nil, err
			}
			out[p.VideoID] = ProgressState{ProgressSeconds: p.ProgressSeconds, Completed: p.Completed}
		}
	}
	return out, nil
}

func (s *FirestoreStore) CompletionsForVideos(ctx context.Context, videoIDs []string) ([]Completion, error) {
	var out []Completion
	for _, chunk := range chunkIDs(videoIDs) {
		docs, err := allDocs(ctx, s.client.Collection(collProgress).
			Where("completed", "==", true).
			Where("videoId", "in", chunk))
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			var p progressDoc
			if err := doc.DataTo(&p); err != nil {
				return nil, err
			}
			out = append(out, Completion{UserID: p.UserID, VideoID: p.VideoID, UpdatedAt: p.UpdatedAt})
		}
	}
	return out, nil
}
