package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amitsuman46/video-progress-tracker/internal/database"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
)

func newTestStore(t *testing.T) *store.GormStore {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return store.NewGormStore(db)
}

func TestLeaderboardRanksByCompletions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	folderID := "lb-root"
	course, err := s.CreateCourse(ctx, "C", &folderID)
	require.NoError(t, err)
	secFolder := "sf"
	section, err := s.CreateSection(ctx, course.ID, "S", 0, &secFolder)
	require.NoError(t, err)
	sub, err := s.CreateSubsection(ctx, section.ID, "Sub", 0, nil)
	require.NoError(t, err)

	var videoIDs []string
	for i := 0; i < 3; i++ {
		v, err := s.CreateVideo(ctx, sub.ID, fmt.Sprintf("V%d", i), fmt.Sprintf("d%d", i), i)
		require.NoError(t, err)
		videoIDs = append(videoIDs, v.ID)
	}

	// alice finishes everything, bob one video, carol none (only partial watch)
	for _, id := range videoIDs {
		require.NoError(t, s.Upsert(ctx, "alice-uid-123", id, 100, true))
	}
	require.NoError(t, s.Upsert(ctx, "bob-uid-456", videoIDs[0], 100, true))
	require.NoError(t, s.Upsert(ctx, "carol-uid-789", videoIDs[0], 42, false))

	lb := NewLeaderboard(s, s)
	entries, err := lb.ForCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[0].Completed)
	assert.Equal(t, 3, entries[0].Total)
	assert.Equal(t, "alice-…", entries[0].DisplayID)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 1, entries[1].Completed)

	// The full uid never appears in the response
	for _, e := range entries {
		assert.NotContains(t, e.DisplayID, "uid-123")
		assert.NotContains(t, e.DisplayID, "uid-456")
	}
}

func TestLeaderboardEmptyCourse(t *testing.T) {
	s := newTestStore(t)
	lb := NewLeaderboard(s, s)

	entries, err := lb.ForCourse(context.Background(), "no-such-course")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
