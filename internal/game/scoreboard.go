package game

import (
	"sort"
	"sync"
	"time"
)

// Scoreboard is the shared score state. Its mutation API is fixed:
// CollectCoin, AddShot, AddTeleport and Reset. It satisfies
// portal.EventSink.
type Scoreboard struct {
	mu        sync.Mutex
	collected map[int]bool
	shots     int
	teleports int
	start     time.Time
	now       func() time.Time
}

// Snapshot is a read-only copy of the score.
type Snapshot struct {
	Collected []int
	Shots     int
	Teleports int
	Elapsed   time.Duration
}

// NewScoreboard starts a fresh run.
func NewScoreboard() *Scoreboard {
	return newScoreboard(time.Now)
}

func newScoreboard(now func() time.Time) *Scoreboard {
	return &Scoreboard{collected: make(map[int]bool), start: now(), now: now}
}

// CollectCoin marks coin id as collected. It reports whether the coin was
// new.
func (s *Scoreboard) CollectCoin(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collected[id] {
		return false
	}
	s.collected[id] = true
	return true
}

// Collected reports whether coin id has been taken.
func (s *Scoreboard) Collected(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collected[id]
}

func (s *Scoreboard) AddShot() {
	s.mu.Lock()
	s.shots++
	s.mu.Unlock()
}

func (s *Scoreboard) AddTeleport() {
	s.mu.Lock()
	s.teleports++
	s.mu.Unlock()
}

// Reset clears every counter and restarts the clock.
func (s *Scoreboard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.collected)
	s.shots = 0
	s.teleports = 0
	s.start = s.now()
}

func (s *Scoreboard) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.collected))
	for id := range s.collected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return Snapshot{
		Collected: ids,
		Shots:     s.shots,
		Teleports: s.teleports,
		Elapsed:   s.now().Sub(s.start),
	}
}
