package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily acquisition pass on a cron schedule. One run per
// day is enough: the remote quota window rolls by calendar date, so each run
// drains whatever the fresh quota allows and the backlog shrinks day by day.
type Scheduler struct {
	cron     *cron.Cron
	mu       sync.Mutex
	entryID  cron.EntryID
	location *time.Location
}

// New creates a Scheduler in the given timezone.
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	// A fire that lands while the previous run is still draining its
	// backlog is skipped, not stacked.
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		location: loc,
	}, nil
}

// Schedule sets up the daily run at the given time (HH:MM format). If a
// previous schedule exists, it is replaced.
func (s *Scheduler) Schedule(dailyTime string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := time.Parse("15:04", dailyTime)
	if err != nil {
		return fmt.Errorf("invalid time %q: must be HH:MM", dailyTime)
	}

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	expr := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	entryID, err := s.cron.AddFunc(expr, task)
	if err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}
	s.entryID = entryID
	return nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
