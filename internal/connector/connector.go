// Package connector holds a lazily dialed, process-scoped store handle.
//
// The first Get dials. Callers arriving while that attempt is in flight wait
// for it instead of dialing again, and every later Get returns the same handle.
// A failed attempt is not remembered: the error is returned to everyone who
// waited on it and the next explicit Get dials anew.
//
//	conn := connector.New(database.Dialer(cfg.Store, log))
//	db, err := conn.Get(ctx)
package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrConnection marks every failure to obtain a handle.
var ErrConnection = errors.New("store connection failed")

// ErrMissingConnectionString is returned by dialers when no connection string
// is configured.
var ErrMissingConnectionString = errors.New("connection string is not set")

// Dialer establishes a ready-to-use handle.
type Dialer[T any] func(ctx context.Context) (T, error)

// Lazy memoizes the handle produced by a Dialer.
type Lazy[T any] struct {
	dial  Dialer[T]
	group singleflight.Group

	mu    sync.RWMutex
	conn  T
	ready bool
}

func New[T any](dial Dialer[T]) *Lazy[T] {
	return &Lazy[T]{dial: dial}
}

// Ready wraps an already established handle.
func Ready[T any](conn T) *Lazy[T] {
	return &Lazy[T]{conn: conn, ready: true}
}

// Get returns the established handle, dialing on first use.
// Errors wrap ErrConnection.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if conn, ok := l.Established(); ok {
		return conn, nil
	}

	// The shared attempt must not die with whichever caller started it.
	dialCtx := context.WithoutCancel(ctx)
	v, err, _ := l.group.Do("dial", func() (any, error) {
		if conn, ok := l.Established(); ok {
			return conn, nil
		}
		if l.dial == nil {
			return nil, ErrMissingConnectionString
		}
		conn, err := l.dial(dialCtx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.conn = conn
		l.ready = true
		l.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return v.(T), nil
}

// Established returns the handle without dialing.
func (l *Lazy[T]) Established() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.conn, l.ready
}

// Close releases the handle with closeFn if one was established.
// Get dials again afterwards.
func (l *Lazy[T]) Close(closeFn func(T) error) error {
	l.mu.Lock()
	conn, ready := l.conn, l.ready
	var zero T
	l.conn, l.ready = zero, false
	l.mu.Unlock()

	if !ready || closeFn == nil {
		return nil
	}
	return closeFn(conn)
}
