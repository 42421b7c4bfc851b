package sync

import (
	"context"
	"fmt"
	"sort"

	"github.com/amitsuman46/video-progress-tracker/internal/drive"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
	"github.com/amitsuman46/video-progress-tracker/pkg/logger"
)

// Syncer reconciles a Drive folder tree into the catalog. The walk is a
// strictly sequential depth-first pass: course -> sections -> subsections ->
// videos, upserting at every level. Records are never deleted; entries whose
// Drive source disappeared simply stop being updated. A failed listing call
// aborts the run and leaves the upserts already applied in place.
type Syncer struct {
	catalog store.Catalog
	drive   drive.Client
}

func New(catalog store.Catalog, driveClient drive.Client) *Syncer {
	return &Syncer{catalog: catalog, drive: driveClient}
}

type Result struct {
	CourseID       string `json:"courseId"`
	Title          string `json:"title"`
	SectionsSynced int    `json:"sectionsSynced"`
}

// Run syncs the full tree under rootFolderID, creating the course on first
// sight. When courseTitle is empty the first section folder's name is used.
func (s *Syncer) Run(ctx context.Context, rootFolderID, courseTitle string) (*Result, error) {
	course, err := s.catalog.CourseByDriveFolderID(ctx, rootFolderID)
	if err != nil && err != store.ErrNotFound {
		return nil, err
	}

	sectionFolders, err := s.drive.ListFolders(ctx, rootFolderID)
	if err != nil {
		return nil, err
	}

	title := courseTitle
	if title == "" {
		title = "Course"
		if len(sectionFolders) > 0 {
			title = sectionFolders[0].Name
		}
	}

	if course == nil {
		folderID := rootFolderID
		course, err = s.catalog.CreateCourse(ctx, title, &folderID)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("courseId", course.ID).Str("title", title).Msg("Created course")
	} else {
		if err := s.catalog.UpdateCourseTitle(ctx, course.ID, title); err != nil {
			return nil, err
		}
		course.Title = title
	}

	if err := s.syncSections(ctx, course.ID, sectionFolders); err != nil {
		return nil, err
	}

	return &Result{CourseID: course.ID, Title: course.Title, SectionsSynced: len(sectionFolders)}, nil
}

// Resync re-runs the walk for an existing course from its stored root folder.
// A course without a stored folder reference cannot be resynced.
func (s *Syncer) Resync(ctx context.Context, courseID string) (*Result, error) {
	course, err := s.catalog.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.DriveFolderID == nil {
		return nil, fmt.Errorf("course %s has no drive folder: %w", courseID, store.ErrNotFound)
	}

	sectionFolders, err := s.drive.ListFolders(ctx, *course.DriveFolderID)
	if err != nil {
		return nil, err
	}

	if err := s.syncSections(ctx, course.ID, sectionFolders); err != nil {
		return nil, err
	}

	return &Result{CourseID: course.ID, Title: course.Title, SectionsSynced: len(sectionFolders)}, nil
}

// syncSections processes section folders in Drive listing order; their order
// values are the listing positions, not re-sorted by name prefix.
func (s *Syncer) syncSections(ctx context.Context, courseID string, folders []drive.Folder) error {
	for i, folder := range folders {
		section, err := s.catalog.SectionByDriveFolderID(ctx, courseID, folder.ID)
		switch err {
		case nil:
			if err := s.catalog.UpdateSectionMeta(ctx, section.ID, folder.Name, i); err != nil {
				return err
			}
		case store.ErrNotFound:
			folderID := folder.ID
			section, err = s.catalog.CreateSection(ctx, courseID, folder.Name, i, &folderID)
			if err != nil {
				return err
			}
		default:
			return err
		}

		if err := s.syncSubsections(ctx, section.ID, folder); err != nil {
			return err
		}
	}
	return nil
}

// candidate is one subsection to reconcile: a real subfolder, or the section
// folder itself standing in when no subfolders exist (synthetic, nil folder id)
type candidate struct {
	sourceFolderID string
	driveFolderID  *string
	title          string
	sortKey        int
}

func (s *Syncer) syncSubsections(ctx context.Context, sectionID string, sectionFolder drive.Folder) error {
	subFolders, err := s.drive.ListFolders(ctx, sectionFolder.ID)
	if err != nil {
		return err
	}

	var candidates []candidate
	if len(subFolders) > 0 {
		for _, f := range subFolders {
			parsed := drive.ParseFolderName(f.Name)
			folderID := f.ID
			candidates = append(candidates, candidate{
				sourceFolderID: f.ID,
				driveFolderID:  &folderID,
				title:          parsed.Title,
				sortKey:        parsed.Order,
			})
		}
	} else {
		candidates = []candidate{{
			sourceFolderID: sectionFolder.ID,
			driveFolderID:  nil,
			title:          sectionFolder.Name,
			sortKey:        0,
		}}
	}

	// Stable: ties keep Drive's alphabetical listing order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sortKey < candidates[j].sortKey
	})

	for i, cand := range candidates {
		sub, err := s.catalog.FindSubsection(ctx, sectionID, cand.driveFolderID, cand.title)
		switch err {
		case nil:
			if err := s.catalog.UpdateSubsectionMeta(ctx, sub.ID, cand.title, i); err != nil {
				return err
			}
		case store.ErrNotFound:
			sub, err = s.catalog.CreateSubsection(ctx, sectionID, cand.title, i, cand.driveFolderID)
			if err != nil {
				return err
			}
		default:
			return err
		}

		if err := s.syncVideos(ctx, sub.ID, cand.sourceFolderID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncVideos(ctx context.Context, subsectionID, folderID string) error {
	files, err := s.drive.ListVideoFiles(ctx, folderID)
	if err != nil {
		return err
	}

	type parsedFile struct {
		file   drive.File
		parsed drive.ParsedName
	}
	parsed := make([]parsedFile, 0, len(files))
	for _, f := range files {
		parsed = append(parsed, parsedFile{file: f, parsed: drive.ParseFileName(f.Name)})
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].parsed.Order < parsed[j].parsed.Order
	})

	for i, pf := range parsed {
		video, err := s.catalog.VideoByDriveFileID(ctx, subsectionID, pf.file.ID)
		switch err {
		case nil:
			if err := s.catalog.UpdateVideoMeta(ctx, video.ID, pf.parsed.Title, i); err != nil {
				return err
			}
		case store.ErrNotFound:
			if _, err := s.catalog.CreateVideo(ctx, subsectionID, pf.parsed.Title, pf.file.ID, i); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}
