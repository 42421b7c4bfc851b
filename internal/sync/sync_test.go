package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amitsuman46/video-progress-tracker/internal/database"
	"github.com/amitsuman46/video-progress-tracker/internal/drive"
	"github.com/amitsuman46/video-progress-tracker/internal/models"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
)

// fakeDrive serves a canned folder tree; map key is the parent folder id
type fakeDrive struct {
	folders map[string][]drive.Folder
	files   map[string][]drive.File
	failOn  string
}

func (f *fakeDrive) ListFolders(_ context.Context, parentID string) ([]drive.Folder, error) {
	if parentID == f.failOn {
		return nil, errors.New("drive unavailable")
	}
	return f.folders[parentID], nil
}

func (f *fakeDrive) ListVideoFiles(_ context.Context, parentID string) ([]drive.File, error) {
	if parentID == f.failOn {
		return nil, errors.New("drive unavailable")
	}
	return f.files[parentID], nil
}

func (f *fakeDrive) OpenStream(context.Context, string, string) (*drive.Stream, error) {
	return nil, errors.New("not implemented")
}

func newTestStore(t *testing.T) *store.GormStore {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return store.NewGormStore(db)
}

func videoFiles(names ...string) []drive.File {
	out := make([]drive.File, 0, len(names))
	for i, n := range names {
		out = append(out, drive.File{ID: fmt.Sprintf("file-%s-%d", n, i), Name: n, MimeType: "video/mp4"})
	}
	return out
}

func TestRunBuildsFullTree(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {
				{ID: "sec1", Name: "01. Foundations"},
				{ID: "sec2", Name: "02. Practice"},
			},
			"sec1": {
				{ID: "sub1", Name: "01.Basics"},
				{ID: "sub2", Name: "02.Setup"},
			},
			// sec2 has no subfolders: loose files sit in the section folder
		},
		files: map[string][]drive.File{
			"sub1": videoFiles("01 - Hello.mp4", "02 - World.mp4"),
			"sub2": videoFiles("01 - Install.mp4"),
			"sec2": videoFiles("01 - Drill.mp4"),
		},
	}

	res, err := New(catalog, d).Run(context.Background(), "root", "My Course")
	require.NoError(t, err)
	assert.Equal(t, "My Course", res.Title)
	assert.Equal(t, 2, res.SectionsSynced)

	tree, err := catalog.CourseTree(context.Background(), res.CourseID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 2)

	// Sections keep raw folder names and listing order
	assert.Equal(t, "01. Foundations", tree.Sections[0].Title)
	assert.Equal(t, 0, tree.Sections[0].Order)
	assert.Equal(t, "02. Practice", tree.Sections[1].Title)
	assert.Equal(t, 1, tree.Sections[1].Order)

	// Real subsections get parsed titles
	require.Len(t, tree.Sections[0].Subsections, 2)
	assert.Equal(t, "Basics", tree.Sections[0].Subsections[0].Title)
	assert.NotNil(t, tree.Sections[0].Subsections[0].DriveFolderID)
	require.Len(t, tree.Sections[0].Subsections[0].Videos, 2)
	assert.Equal(t, "Hello.mp4", tree.Sections[0].Subsections[0].Videos[0].Title)
	assert.Equal(t, 0, tree.Sections[0].Subsections[0].Videos[0].Order)
	assert.Equal(t, 1, tree.Sections[0].Subsections[0].Videos[1].Order)

	// The empty section got exactly one synthetic subsection holding its files
	require.Len(t, tree.Sections[1].Subsections, 1)
	synthetic := tree.Sections[1].Subsections[0]
	assert.Nil(t, synthetic.DriveFolderID)
	assert.Equal(t, "02. Practice", synthetic.Title)
	require.Len(t, synthetic.Videos, 1)
	assert.Equal(t, "Drill.mp4", synthetic.Videos[0].Title)
}

func TestRunDefaultsTitleToFirstFolder(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {{ID: "sec1", Name: "01. Welcome"}},
		},
		files: map[string][]drive.File{},
	}

	res, err := New(catalog, d).Run(context.Background(), "root", "")
	require.NoError(t, err)
	assert.Equal(t, "01. Welcome", res.Title)
}

func TestRunIsIdempotent(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {{ID: "sec1", Name: "01. One"}},
			"sec1": {{ID: "sub1", Name: "01.Intro"}},
		},
		files: map[string][]drive.File{
			"sub1": videoFiles("01 - A.mp4", "02 - B.mp4"),
		},
	}
	syncer := New(catalog, d)

	first, err := syncer.Run(context.Background(), "root", "")
	require.NoError(t, err)
	second, err := syncer.Run(context.Background(), "root", "")
	require.NoError(t, err)
	assert.Equal(t, first.CourseID, second.CourseID)

	courses, err := catalog.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)

	tree, err := catalog.CourseTree(context.Background(), first.CourseID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 1)
	require.Len(t, tree.Sections[0].Subsections, 1)
	require.Len(t, tree.Sections[0].Subsections[0].Videos, 2)
	assert.Equal(t, 0, tree.Sections[0].Subsections[0].Videos[0].Order)
	assert.Equal(t, 1, tree.Sections[0].Subsections[0].Videos[1].Order)
}

// Subsections are re-sorted by their parsed numeric prefix, not by the
// alphabetical order Drive lists them in.
func TestSubsectionsSortedByParsedOrder(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {{ID: "sec1", Name: "01. One"}},
			// Alphabetical listing: "1.Alpha" < "10.Zeta" < "2.Beta"
			"sec1": {
				{ID: "a", Name: "1.Alpha"},
				{ID: "z", Name: "10.Zeta"},
				{ID: "b", Name: "2.Beta"},
			},
		},
		files: map[string][]drive.File{},
	}

	res, err := New(catalog, d).Run(context.Background(), "root", "")
	require.NoError(t, err)

	tree, err := catalog.CourseTree(context.Background(), res.CourseID)
	require.NoError(t, err)
	subs := tree.Sections[0].Subsections
	require.Len(t, subs, 3)
	assert.Equal(t, []string{"Alpha", "Beta", "Zeta"}, []string{subs[0].Title, subs[1].Title, subs[2].Title})
	assert.Equal(t, []int{0, 1, 2}, []int{subs[0].Order, subs[1].Order, subs[2].Order})
}

// Unprefixed video files sort to the front (order key 0), unlike folders
func TestUnprefixedFilesFloatToFront(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {{ID: "sec1", Name: "01. One"}},
			"sec1": {{ID: "sub1", Name: "01.Intro"}},
		},
		files: map[string][]drive.File{
			"sub1": {
				{ID: "f1", Name: "01 - First.mp4", MimeType: "video/mp4"},
				{ID: "f2", Name: "bonus.mp4", MimeType: "video/mp4"},
			},
		},
	}

	res, err := New(catalog, d).Run(context.Background(), "root", "")
	require.NoError(t, err)

	tree, err := catalog.CourseTree(context.Background(), res.CourseID)
	require.NoError(t, err)
	videos := tree.Sections[0].Subsections[0].Videos
	require.Len(t, videos, 2)
	assert.Equal(t, "bonus.mp4", videos[0].Title)
	assert.Equal(t, "First.mp4", videos[1].Title)
}

// A repeated sync of a section with loose files must reuse the synthetic
// subsection (matched by title + null folder id), not mint another one.
func TestSyntheticSubsectionNotDuplicated(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {{ID: "sec1", Name: "01. Loose"}},
		},
		files: map[string][]drive.File{
			"sec1": videoFiles("01 - A.mp4"),
		},
	}
	syncer := New(catalog, d)

	res, err := syncer.Run(context.Background(), "root", "")
	require.NoError(t, err)
	_, err = syncer.Run(context.Background(), "root", "")
	require.NoError(t, err)

	tree, err := catalog.CourseTree(context.Background(), res.CourseID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 1)
	assert.Len(t, tree.Sections[0].Subsections, 1)
}

// When a previously-flat section gains real subfolders, the new subsections
// are created by folder id; the stale synthetic row stays (sync never deletes).
func TestFlatSectionGainingSubfolders(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {{ID: "sec1", Name: "01. Growing"}},
		},
		files: map[string][]drive.File{
			"sec1": videoFiles("01 - A.mp4"),
		},
	}
	syncer := New(catalog, d)

	res, err := syncer.Run(context.Background(), "root", "")
	require.NoError(t, err)

	d.folders["sec1"] = []drive.Folder{{ID: "sub1", Name: "01.NowReal"}}
	d.files["sub1"] = videoFiles("01 - A.mp4")
	_, err = syncer.Run(context.Background(), "root", "")
	require.NoError(t, err)

	tree, err := catalog.CourseTree(context.Background(), res.CourseID)
	require.NoError(t, err)
	subs := tree.Sections[0].Subsections
	require.Len(t, subs, 2)

	var real, synthetic int
	for _, s := range subs {
		if s.DriveFolderID != nil {
			real++
		} else {
			synthetic++
		}
	}
	assert.Equal(t, 1, real)
	assert.Equal(t, 1, synthetic)
}

func TestResyncRequiresDriveFolder(t *testing.T) {
	catalog := newTestStore(t)
	course, err := catalog.CreateCourse(context.Background(), "Manual", nil)
	require.NoError(t, err)

	syncer := New(catalog, &fakeDrive{})
	_, err = syncer.Resync(context.Background(), course.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = syncer.Resync(context.Background(), "missing-course")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListingFailureAbortsButKeepsEarlierUpserts(t *testing.T) {
	catalog := newTestStore(t)
	d := &fakeDrive{
		folders: map[string][]drive.Folder{
			"root": {
				{ID: "sec1", Name: "01. Fine"},
				{ID: "sec2", Name: "02. Broken"},
			},
		},
		files:  map[string][]drive.File{},
		failOn: "sec2",
	}

	_, err := New(catalog, d).Run(context.Background(), "root", "Partial")
	require.Error(t, err)

	// Upserts applied before the failure stay committed: the course, both
	// section rows, and the first section's synthetic subsection. The broken
	// section aborted before any of its children were written.
	course, err := catalog.CourseByDriveFolderID(context.Background(), "root")
	require.NoError(t, err)
	var tree *models.Course
	tree, err = catalog.CourseTree(context.Background(), course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 2)
	assert.Equal(t, "01. Fine", tree.Sections[0].Title)
	assert.Len(t, tree.Sections[0].Subsections, 1)
	assert.Empty(t, tree.Sections[1].Subsections)
}
