package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultInterval   = 30 * time.Second
	DefaultPruneEvery = 5 * time.Minute
)

type Alerter interface {
	Toast(n Notification)
	Sound()
}

// Poller refreshes page 1 on a fixed interval and raises alerts for new
// notifications.
type Poller struct {
	fetch      pageFetcher
	tracker    *Tracker
	alert      Alerter
	interval   time.Duration
	pruneEvery time.Duration
	limit      int
	onUnread   func(int)

	mu     sync.Mutex
	recent []Notification
	unread int
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

func WithPruneEvery(d time.Duration) Option {
	return func(p *Poller) { p.pruneEvery = d }
}

func WithLimit(n int) Option {
	return func(p *Poller) { p.limit = n }
}

// OnUnread registers a callback for the server's unread count after each
// successful poll.
func OnUnread(fn func(int)) Option {
	return func(p *Poller) { p.onUnread = fn }
}

func New(fetch pageFetcher, tracker *Tracker, alert Alerter, opts ...Option) *Poller {
	p := &Poller{
		fetch:      fetch,
		tracker:    tracker,
		alert:      alert,
		interval:   DefaultInterval,
		pruneEvery: DefaultPruneEvery,
		limit:      10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll runs one cycle. A rejected session ends the cycle quietly; other
// failures are returned for logging and the next tick tries again.
func (p *Poller) Poll(ctx context.Context) error {
	page, err := p.fetch.Page(ctx, 1, p.limit)
	if errors.Is(err, ErrUnauthorized) {
		slog.Debug("poll skipped, session rejected")
		return nil
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.recent = page.Notifications
	p.unread = page.UnreadCount
	p.mu.Unlock()
	if p.onUnread != nil {
		p.onUnread(page.UnreadCount)
	}

	fresh := p.tracker.Observe(page.Notifications)
	for _, n := range fresh {
		p.alert.Toast(n)
	}
	if len(fresh) > 0 {
		p.alert.Sound()
	}
	return nil
}

// Prune trims the tracker against the latest page.
func (p *Poller) Prune() int {
	p.mu.Lock()
	recent := p.recent
	p.mu.Unlock()
	return p.tracker.Prune(recent)
}

func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// Run polls immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	poll := time.NewTicker(p.interval)
	defer poll.Stop()
	prune := time.NewTicker(p.pruneEvery)
	defer prune.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			p.cycle(ctx)
		case <-prune.C:
			remaining := p.Prune()
			slog.Debug("pruned processed notifications", "remaining", remaining)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("notification poll failed", "error", err)
	}
}
