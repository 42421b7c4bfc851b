package streamtoken

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a minted stream token stays valid
	DefaultTTL = time.Hour
	// DefaultCapacity bounds the token map under sustained traffic
	DefaultCapacity = 10000

	sweepInterval = 5 * time.Minute
)

type entry struct {
	driveFileID string
	expiresAt   time.Time
}

// Store holds short-lived opaque stream tokens in process memory. Each token
// grants access to exactly one Drive file. The map is bounded: expired
// entries are dropped on read and by a periodic sweep, and when the capacity
// is hit the soonest-expiring entry is evicted.
type Store struct {
	mu       sync.Mutex
	tokens   map[string]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func NewStore() *Store {
	s := &Store{
		tokens:   make(map[string]entry),
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	go s.sweep()
	return s
}

// newStoreForTest skips the sweeper goroutine and lets tests control the clock
func newStoreForTest(ttl time.Duration, capacity int, now func() time.Time) *Store {
	return &Store{
		tokens:   make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      now,
	}
}

// Create mints an opaque token bound to one Drive file id
func (s *Store) Create(driveFileID string) string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tokens) >= s.capacity {
		s.evictSoonestLocked()
	}
	s.tokens[token] = entry{driveFileID: driveFileID, expiresAt: s.now().Add(s.ttl)}
	return token
}

// Lookup resolves a token to its Drive file id. Expired or unknown tokens
// return ok=false; expired entries are deleted on the way out.
func (s *Store) Lookup(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	if s.now().After(e.expiresAt) {
		delete(s.tokens, token)
		return "", false
	}
	return e.driveFileID, true
}

func (s *Store) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for tok, e := range s.tokens {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = tok
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(s.tokens, victim)
	}
}

func (s *Store) sweep() {
	for {
		time.Sleep(sweepInterval)
		now := s.now()
		s.mu.Lock()
		for tok, e := range s.tokens {
			if now.After(e.expiresAt) {
				delete(s.tokens, tok)
			}
		}
		s.mu.Unlock()
	}
}
