package poller

import (
	"context"
	"sync"
)

type pageFetcher interface {
	Page(ctx context.Context, page, limit int) (*Page, error)
}

// Pager backs the open dropdown: page 1 on open, then infinite scroll.
type Pager struct {
	fetch pageFetcher
	limit int

	mu         sync.Mutex
	open       bool
	loading    bool
	generation int
	page       int
	hasMore    bool
	items      []Notification
	unread     int
}

func NewPager(fetch pageFetcher, limit int) *Pager {
	if limit <= 0 {
		limit = 10
	}
	return &Pager{fetch: fetch, limit: limit}
}

// Open resets to the freshest first page. Pages appended before are
// discarded, as is any load still in flight.
func (p *Pager) Open(ctx context.Context) error {
	p.mu.Lock()
	p.open = true
	p.generation++
	p.page = 0
	p.hasMore = true
	p.items = nil
	p.loading = false
	p.mu.Unlock()

	_, err := p.LoadMore(ctx)
	return err
}

func (p *Pager) Close() {
	p.mu.Lock()
	p.open = false
	p.mu.Unlock()
}

// LoadMore fetches the next page. It reports false without fetching when
// closed, exhausted, or already loading.
func (p *Pager) LoadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if !p.open || p.loading || !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	gen := p.generation
	next := p.page + 1
	p.mu.Unlock()

	page, err := p.fetch.Page(ctx, next, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false, nil
	}
	p.loading = false
	if err != nil {
		return false, err
	}

	p.page = next
	p.hasMore = page.Pagination.HasMore
	p.unread = page.UnreadCount
	p.items = append(p.items, page.Notifications...)
	return true, nil
}

func (p *Pager) Items() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Notification, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *Pager) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// MarkLocalRead flips the read flag on a loaded item after a successful
// mark-read call.
func (p *Pager) MarkLocalRead(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		if p.items[i].ID == id && !p.items[i].IsRead {
			p.items[i].IsRead = true
			if p.unread > 0 {
				p.unread--
			}
		}
	}
}
