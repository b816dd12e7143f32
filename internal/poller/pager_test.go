package poller

import (
	"context"
	"testing"
	"time"
)

func pagesOf(total, limit int) []*Page {
	now := time.Now()
	var pages []*Page
	id := int64(total)
	for page := 1; (page-1)*limit < total; page++ {
		p := &Page{UnreadCount: total, Pagination: Pagination{Page: page, Limit: limit, Total: total}}
		for i := 0; i < limit && id > 0; i++ {
			p.Notifications = append(p.Notifications, item(id, now, false))
			id--
		}
		p.Pagination.HasMore = page*limit < total
		pages = append(pages, p)
	}
	return pages
}

func TestPagerLoadsUntilExhausted(t *testing.T) {
	fetch := &scriptedFetcher{pages: pagesOf(25, 10)}
	p := NewPager(fetch, 10)

	if loaded, _ := p.LoadMore(context.Background()); loaded {
		t.Error("closed pager should not load")
	}

	if err := p.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	for p.HasMore() {
		if _, err := p.LoadMore(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if loaded, _ := p.LoadMore(context.Background()); loaded {
		t.Error("exhausted pager should not load")
	}

	if n := len(p.Items()); n != 25 {
		t.Errorf("items = %d, want 25", n)
	}
	want := []int{1, 2, 3}
	if len(fetch.calls) != len(want) {
		t.Fatalf("calls = %v", fetch.calls)
	}
	for i := range want {
		if fetch.calls[i] != want[i] {
			t.Errorf("calls = %v, want %v", fetch.calls, want)
		}
	}
}

func TestPagerIgnoresLoadWhileInFlight(t *testing.T) {
	fetch := &scriptedFetcher{pages: pagesOf(25, 10)}
	p := NewPager(fetch, 10)
	if err := p.Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	fetch.mu.Lock()
	fetch.block = make(chan struct{})
	fetch.mu.Unlock()

	done := make(chan bool)
	go func() {
		loaded, _ := p.LoadMore(context.Background())
		done <- loaded
	}()

	for {
		fetch.mu.Lock()
		n := len(fetch.calls)
		fetch.mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if loaded, _ := p.LoadMore(context.Background()); loaded {
		t.Error("second LoadMore should be a no-op while one is in flight")
	}
	close(fetch.block)
	if !<-done {
		t.Error("first LoadMore should have loaded")
	}

	fetch.mu.Lock()
	defer fetch.mu.Unlock()
	if len(fetch.calls) != 2 {
		t.Errorf("calls = %v", fetch.calls)
	}
}

func TestPagerOpenResetsToFirstPage(t *testing.T) {
	pages := pagesOf(25, 10)
	fetch := &scriptedFetcher{pages: []*Page{pages[0], pages[1], pages[0]}}
	p := NewPager(fetch, 10)

	_ = p.Open(context.Background())
	_, _ = p.LoadMore(context.Background())
	if len(p.Items()) != 20 {
		t.Fatalf("items = %d", len(p.Items()))
	}

	p.Close()
	if err := p.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	items := p.Items()
	if len(items) != 10 || items[0].ID != 25 {
		t.Errorf("reopen should show only the first page, got %d items", len(items))
	}
	if fetch.calls[2] != 1 {
		t.Errorf("reopen fetched page %d", fetch.calls[2])
	}
}

func TestPagerMarkLocalRead(t *testing.T) {
	fetch := &scriptedFetcher{pages: pagesOf(3, 10)}
	p := NewPager(fetch, 10)
	_ = p.Open(context.Background())

	p.MarkLocalRead(2)
	p.MarkLocalRead(2)
	if p.UnreadCount() != 2 {
		t.Errorf("unread = %d, want 2", p.UnreadCount())
	}
}
