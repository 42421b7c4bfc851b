package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amitsuman46/video-progress-tracker/internal/store"
)

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	DisplayID string `json:"displayId"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type cachedLeaderboard struct {
	entries   []LeaderboardEntry
	expiresAt time.Time
}

// Leaderboard ranks users by completed videos per course. Results are cached
// in memory for a short TTL since completion counts move slowly.
type Leaderboard struct {
	catalog  store.Catalog
	progress store.Progress

	mu    sync.RWMutex
	cache map[string]cachedLeaderboard
	ttl   time.Duration
}

func NewLeaderboard(catalog store.Catalog, progress store.Progress) *Leaderboard {
	return &Leaderboard{
		catalog:  catalog,
		progress: progress,
		cache:    make(map[string]cachedLeaderboard),
		ttl:      30 * time.Second,
	}
}

// Invalidate clears the cached ranking for a course (called after sync)
func (l *Leaderboard) Invalidate(courseID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, courseID)
}

// ForCourse computes the completion ranking. Display identity is masked: a
// uid prefix only, so learners can locate themselves without exposing others.
func (l *Leaderboard) ForCourse(ctx context.Context, courseID string) ([]LeaderboardEntry, error) {
	l.mu.RLock()
	if cached, ok := l.cache[courseID]; ok && time.Now().Before(cached.expiresAt) {
		l.mu.RUnlock()
		return cached.entries, nil
	}
	l.mu.RUnlock()

	videoIDs, err := l.catalog.VideoIDsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	completions, err := l.progress.CompletionsForVideos(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	type userStat struct {
		uid       string
		completed int
		lastAt    time.Time
	}
	byUser := make(map[string]*userStat)
	for _, c := range completions {
		stat := byUser[c.UserID]
		if stat == nil {
			stat = &userStat{uid: c.UserID}
			byUser[c.UserID] = stat
		}
		stat.completed++
		if c.UpdatedAt.After(stat.lastAt) {
			stat.lastAt = c.UpdatedAt
		}
	}

	stats := make([]*userStat, 0, len(byUser))
	for _, s := range byUser {
		stats = append(stats, s)
	}
	// Most completions first; on ties the earlier finisher ranks higher
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].completed != stats[j].completed {
			return stats[i].completed > stats[j].completed
		}
		if !stats[i].lastAt.Equal(stats[j].lastAt) {
			return stats[i].lastAt.Before(stats[j].lastAt)
		}
		return stats[i].uid < stats[j].uid
	})

	entries := make([]LeaderboardEntry, 0, len(stats))
	for i, s := range stats {
		entries = append(entries, LeaderboardEntry{
			Rank:      i + 1,
			DisplayID: maskUID(s.uid),
			Completed: s.completed,
			Total:     len(videoIDs),
		})
	}

	l.mu.Lock()
	l.cache[courseID] = cachedLeaderboard{entries: entries, expiresAt: time.Now().Add(l.ttl)}
	l.mu.Unlock()

	return entries, nil
}

// maskUID keeps a short prefix so a user can spot themselves without the
// full identity leaking to other learners
func maskUID(uid string) string {
	const visible = 6
	if len(uid) <= visible {
		return uid + "…"
	}
	return uid[:visible] + "…"
}
