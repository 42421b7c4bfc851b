package streamtoken

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateAndLookup(t *testing.T) {
	s := newStoreForTest(time.Hour, 100, time.Now)

	tok := s.Create("file-1")
	assert.NotEmpty(t, tok)

	fileID, ok := s.Lookup(tok)
	assert.True(t, ok)
	assert.Equal(t, "file-1", fileID)

	_, ok = s.Lookup("no-such-token")
	assert.False(t, ok)
}

func TestExpiredTokenRejectedAndDeleted(t *testing.T) {
	clock := time.Now()
	now := func() time.Time { return clock }
	s := newStoreForTest(time.Hour, 100, now)

	tok := s.Create("file-1")

	clock = clock.Add(time.Hour + time.Second)
	_, ok := s.Lookup(tok)
	assert.False(t, ok)

	// Entry was removed on read, not just hidden
	s.mu.Lock()
	_, stillThere := s.tokens[tok]
	s.mu.Unlock()
	assert.False(t, stillThere)
}

func TestCapacityEvictsSoonestExpiry(t *testing.T) {
	clock := time.Now()
	now := func() time.Time { return clock }
	s := newStoreForTest(time.Hour, 3, now)

	first := s.Create("file-0")
	clock = clock.Add(time.Minute)
	var rest []string
	for i := 1; i < 3; i++ {
		rest = append(rest, s.Create(fmt.Sprintf("file-%d", i)))
		clock = clock.Add(time.Minute)
	}

	// At capacity: the next insert evicts the oldest (soonest expiring) token
	s.Create("file-3")

	_, ok := s.Lookup(first)
	assert.False(t, ok, "oldest token should be evicted")
	for _, tok := range rest {
		_, ok := s.Lookup(tok)
		assert.True(t, ok)
	}
}

func TestTokensAreUnique(t *testing.T) {
	s := newStoreForTest(time.Hour, 100, time.Now)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok := s.Create("f")
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
