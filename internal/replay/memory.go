package replay

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"webhook-guard/internal/common/logging"
)

// DefaultSweepSchedule runs the expiry sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// MemoryStore keeps delivery IDs in process. Expired IDs are treated as
// absent immediately; a cron job reclaims their memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time

	sweeper *cron.Cron
	logger  logging.Logger
}

// NewMemoryStore builds a store and schedules its sweep. An empty schedule
// selects DefaultSweepSchedule. Call Stop to end the sweep.
func NewMemoryStore(schedule string, logger logging.Logger) (*MemoryStore, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	s := &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
		sweeper: cron.New(),
		logger:  logger.WithFields(logging.String("component", "replay")),
	}
	if _, err := s.sweeper.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, err
	}
	s.sweeper.Start()
	return s, nil
}

// Remember records id until ttl has elapsed. It reports false when a live
// record already exists.
func (s *MemoryStore) Remember(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expires, ok := s.entries[id]; ok && now.Before(expires) {
		return false, nil
	}
	s.entries[id] = now.Add(ttl)
	return true, nil
}

// Forget removes id.
func (s *MemoryStore) Forget(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired records and returns how many it removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	now := s.now()
	removed := 0
	for id, expires := range s.entries {
		if !now.Before(expires) {
			delete(s.entries, id)
			removed++
		}
	}
	remaining := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("Swept expired delivery IDs",
			logging.Int("removed", removed),
			logging.Int("remaining", remaining),
		)
	}
	return removed
}

// Len returns the number of records, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop ends the sweep and waits for a running one to finish.
func (s *MemoryStore) Stop() {
	<-s.sweeper.Stop().Done()
}
