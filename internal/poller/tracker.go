package poller

import (
	"sync"
	"time"
)

const (
	DefaultRecencyWindow = 30 * time.Second
	DefaultPruneWindow   = 5 * time.Minute
)

// Tracker decides which notifications deserve an alert. Each id alerts at
// most once, and nothing alerts on the first load.
type Tracker struct {
	mu          sync.Mutex
	processed   map[int64]struct{}
	loaded      bool
	window      time.Duration
	pruneWindow time.Duration
	now         func() time.Time
}

type TrackerOption func(*Tracker)

func WithRecencyWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.window = d }
}

func WithPruneWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.pruneWindow = d }
}

func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		processed:   make(map[int64]struct{}),
		window:      DefaultRecencyWindow,
		pruneWindow: DefaultPruneWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe takes a fresh first page and returns the alert candidates in page
// order. Candidates are marked processed before Observe returns.
func (t *Tracker) Observe(items []Notification) []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		t.loaded = true
		return nil
	}

	cutoff := t.now().Add(-t.window)
	var fresh []Notification
	for _, n := range items {
		if n.IsRead {
			continue
		}
		if _, seen := t.processed[n.ID]; seen {
			continue
		}
		if n.CreatedAt.Before(cutoff) {
			continue
		}
		t.processed[n.ID] = struct{}{}
		fresh = append(fresh, n)
	}
	return fresh
}

// Prune drops processed ids that are no longer among the recent items. It
// returns how many ids remain.
func (t *Tracker) Prune(items []Notification) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.pruneWindow)
	recent := make(map[int64]struct{}, len(items))
	for _, n := range items {
		if !n.CreatedAt.Before(cutoff) {
			recent[n.ID] = struct{}{}
		}
	}
	for id := range t.processed {
		if _, ok := recent[id]; !ok {
			delete(t.processed, id)
		}
	}
	return len(t.processed)
}

// Reset forgets the first load so the next Observe is silent again.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.loaded = false
	t.mu.Unlock()
}

func (t *Tracker) Processed(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.processed[id]
	return ok
}
