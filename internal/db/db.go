package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"clientportal/internal/config"
	"clientportal/internal/metrics"
)

// Queryer is the subset of sqlx used by the repositories. Both *sqlx.DB and
// *Pool satisfy it.
type Queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Pool wraps a shared *sqlx.DB with bounded retry on transient network
// errors. A connection-fatal error closes the underlying pool; the next call
// reopens it.
type Pool struct {
	mu   sync.Mutex
	db   *sqlx.DB
	open func() (*sqlx.DB, error)

	attempts int
	backoff  time.Duration
	newTimer func() backoff.Timer
}

type Option func(*Pool)

// WithRetry sets the attempt count and the linear backoff step.
func WithRetry(attempts int, step time.Duration) Option {
	return func(p *Pool) {
		if attempts > 0 {
			p.attempts = attempts
		}
		p.backoff = step
	}
}

func NewPool(open func() (*sqlx.DB, error), opts ...Option) *Pool {
	p := &Pool{
		open:     open,
		attempts: 3,
		backoff:  200 * time.Millisecond,
		newTimer: func() backoff.Timer { return nil },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect opens the Postgres pool described by cfg and verifies it with a ping.
func Connect(cfg *config.Config) (*Pool, error) {
	open := func() (*sqlx.DB, error) {
		conn, err := sqlx.Connect("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("error connecting to the database: %w", err)
		}
		conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
		conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
		conn.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)
		return conn, nil
	}

	p := NewPool(open, WithRetry(cfg.DBRetryAttempts, cfg.DBRetryBackoff))
	if _, err := p.conn(); err != nil {
		return nil, err
	}

	slog.Info("Successfully connected to database",
		"host", cfg.DBHost,
		"max_open_conns", cfg.DBMaxOpenConns,
		"conn_max_idle_time", cfg.DBConnMaxIdleTime)
	return p, nil
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *Pool) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return p.do(ctx, "get", func(db *sqlx.DB) error {
		return db.GetContext(ctx, dest, query, args...)
	})
}

func (p *Pool) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return p.do(ctx, "select", func(db *sqlx.DB) error {
		return db.SelectContext(ctx, dest, query, args...)
	})
}

func (p *Pool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	var res sql.Result
	err := p.do(ctx, "exec", func(db *sqlx.DB) error {
		var err error
		res, err = db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (p *Pool) PingContext(ctx context.Context) error {
	return p.do(ctx, "ping", func(db *sqlx.DB) error {
		return db.PingContext(ctx)
	})
}

func (p *Pool) conn() (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db, nil
	}
	db, err := p.open()
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// reset tears down the pool if it is still the one that failed.
func (p *Pool) reset(failed *sqlx.DB) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil || p.db != failed {
		return
	}
	if err := p.db.Close(); err != nil {
		slog.Warn("failed to close database pool", "error", err)
	}
	p.db = nil
}

func (p *Pool) do(ctx context.Context, op string, fn func(*sqlx.DB) error) error {
	attempt := 0
	call := func() error {
		attempt++
		db, err := p.conn()
		if err == nil {
			err = fn(db)
			if err == nil {
				return nil
			}
			if IsConnectionFatal(err) {
				slog.Warn("connection-fatal database error, resetting pool", "op", op, "error", err)
				p.reset(db)
			}
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		metrics.DBRetries.WithLabelValues(op).Inc()
		slog.Warn("transient database error, retrying",
			"op", op, "attempt", attempt, "max_attempts", p.attempts, "wait", wait, "error", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&linearBackOff{step: p.backoff}, uint64(p.attempts-1)), ctx)
	return backoff.RetryNotifyWithTimer(call, b, notify, p.newTimer())
}

// linearBackOff waits step, 2*step, 3*step, ...
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }

// IsTransient reports whether err is a network-level failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	if IsConnectionFatal(err) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "57P03" {
		return true
	}
	return false
}

// IsConnectionFatal reports whether err means the connection is gone.
func IsConnectionFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "08" {
			return true
		}
		switch pqErr.Code {
		case "57P01", "57P02":
			return true
		}
	}
	return false
}
