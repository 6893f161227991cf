package repositories

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// idGenerator hands out strictly increasing ULIDs. Within the same
// millisecond the monotonic entropy increments the random part, and a wall
// clock going backwards reuses the last instant, so lexicographic key order
// is always append order and agrees with the returned timestamps.
type idGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	lastAt  time.Time
}

func newIDGenerator() *idGenerator {
	return &idGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// next returns the id and the instant to record with it, which is at unless
// the clock went backwards since the previous call.
func (g *idGenerator) next(at time.Time) (ulid.ULID, time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if at.Before(g.lastAt) {
		at = g.lastAt
	}
	id, err := ulid.New(ulid.Timestamp(at), g.entropy)
	if err != nil {
		return ulid.ULID{}, time.Time{}, err
	}
	g.lastAt = at
	return id, at, nil
}
