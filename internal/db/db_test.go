package db

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// instantTimer fires as soon as it is started.
type instantTimer struct {
	c chan time.Time
}

func (t *instantTimer) Start(time.Duration) {
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func newTestPool(t *testing.T, attempts int) (*Pool, *int) {
	t.Helper()
	opens := 0
	p := NewPool(func() (*sqlx.DB, error) {
		opens++
		mockDB, _, err := sqlmock.New()
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(mockDB, "sqlmock"), nil
	}, WithRetry(attempts, time.Millisecond))
	p.newTimer = func() backoff.Timer { return &instantTimer{} }
	t.Cleanup(func() { p.Close() })
	return p, &opens
}

func TestDoRetriesTransientErrors(t *testing.T) {
	p, _ := newTestPool(t, 3)

	calls := 0
	err := p.do(context.Background(), "test", func(*sqlx.DB) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	p, _ := newTestPool(t, 3)

	calls := 0
	err := p.do(context.Background(), "test", func(*sqlx.DB) error {
		calls++
		return syscall.ECONNREFUSED
	})
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Fatalf("expected ECONNREFUSED, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoDoesNotRetryQueryErrors(t *testing.T) {
	p, _ := newTestPool(t, 3)

	calls := 0
	syntaxErr := &pq.Error{Code: "42601", Message: "syntax error"}
	err := p.do(context.Background(), "test", func(*sqlx.DB) error {
		calls++
		return syntaxErr
	})
	if !errors.Is(err, syntaxErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoResetsPoolOnConnectionFatalError(t *testing.T) {
	p, opens := newTestPool(t, 2)

	calls := 0
	err := p.do(context.Background(), "test", func(*sqlx.DB) error {
		calls++
		if calls == 1 {
			return syscall.ECONNRESET
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if *opens != 2 {
		t.Errorf("expected pool to be reopened once (2 opens), got %d", *opens)
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	p, _ := newTestPool(t, 5)
	p.newTimer = func() backoff.Timer { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.do(ctx, "test", func(*sqlx.DB) error {
		calls++
		return syscall.ECONNREFUSED
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation stopped retries, got %d", calls)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		fatal     bool
	}{
		{"nil", nil, false, false},
		{"refused", syscall.ECONNREFUSED, true, false},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true, true},
		{"connection exception class", &pq.Error{Code: "08006"}, true, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true, true},
		{"cannot connect now", &pq.Error{Code: "57P03"}, true, false},
		{"unique violation", &pq.Error{Code: "23505"}, false, false},
		{"plain", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient = %v, want %v", got, tt.transient)
			}
			if got := IsConnectionFatal(tt.err); got != tt.fatal {
				t.Errorf("IsConnectionFatal = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{step: 100 * time.Millisecond}
	for i, want := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond} {
		if got := b.NextBackOff(); got != want {
			t.Errorf("wait %d = %v, want %v", i+1, got, want)
		}
	}
	b.Reset()
	if got := b.NextBackOff(); got != 100*time.Millisecond {
		t.Errorf("after reset = %v", got)
	}
}

func TestDoSingleAttemptDoesNotRetry(t *testing.T) {
	p, _ := newTestPool(t, 1)

	calls := 0
	err := p.do(context.Background(), "test", func(*sqlx.DB) error {
		calls++
		return syscall.ECONNREFUSED
	})
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Fatalf("expected ECONNREFUSED, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
