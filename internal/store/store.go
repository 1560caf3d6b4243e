// Package store keeps game sessions in memory, keyed by id. Every write bumps
// a version so callers can read, work on a copy and commit with
// compare-and-swap. Entries idle for longer than the configured TTL are
// evicted by a janitor.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

var (
	// ErrNotFound is returned for an unknown id
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a compare-and-swap loses a race
	ErrConflict = errors.New("version conflict")
	// ErrExists is returned when creating an id that is already stored
	ErrExists = errors.New("already exists")
)

// Entry is a stored value with its version and last write time
type Entry[T any] struct {
	Value     T
	Version   uint64
	UpdatedAt time.Time
}

// Memory is a concurrency-safe in-memory store
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[T]
	clock   quartz.Clock
	logger  *log.Logger
}

// Option configures a Memory store
type Option func(*options)

type options struct {
	clock  quartz.Clock
	logger *log.Logger
}

// WithClock sets the clock used for timestamps and the janitor
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLogger sets the logger used by the janitor
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewMemory creates an empty store
func NewMemory[T any](opts ...Option) *Memory[T] {
	o := &options{
		clock:  quartz.NewReal(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Memory[T]{
		entries: make(map[string]*Entry[T]),
		clock:   o.clock,
		logger:  o.logger.WithPrefix("store"),
	}
}

// Create stores a new value at version 1
func (m *Memory[T]) Create(id string, value T) (Entry[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; ok {
		return Entry[T]{}, fmt.Errorf("%w: %s", ErrExists, id)
	}
	e := &Entry[T]{Value: value, Version: 1, UpdatedAt: m.clock.Now()}
	m.entries[id] = e
	return *e, nil
}

// Get returns the current entry for id
func (m *Memory[T]) Get(id string) (Entry[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return Entry[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *e, nil
}

// Put stores value unconditionally and returns the new entry
func (m *Memory[T]) Put(id string, value T) Entry[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	var version uint64 = 1
	if e, ok := m.entries[id]; ok {
		version = e.Version + 1
	}
	e := &Entry[T]{Value: value, Version: version, UpdatedAt: m.clock.Now()}
	m.entries[id] = e
	return *e
}

// CompareAndSwap replaces the value only if the stored version still equals
// version.
func (m *Memory[T]) CompareAndSwap(id string, version uint64, value T) (Entry[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Entry[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.Version != version {
		return Entry[T]{}, fmt.Errorf("%w: %s at version %d, expected %d", ErrConflict, id, e.Version, version)
	}
	next := &Entry[T]{Value: value, Version: version + 1, UpdatedAt: m.clock.Now()}
	m.entries[id] = next
	return *next, nil
}

// Delete removes id. Deleting an unknown id is not an error.
func (m *Memory[T]) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// Len returns the number of stored entries
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes every entry not written within maxIdle and returns the
// removed ids.
func (m *Memory[T]) Sweep(maxIdle time.Duration) []string {
	cutoff := m.clock.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, e := range m.entries {
		if e.UpdatedAt.Before(cutoff) {
			delete(m.entries, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// RunJanitor sweeps idle entries every interval until ctx is cancelled.
// onEvict, when not nil, is called with the ids removed by each sweep.
func (m *Memory[T]) RunJanitor(ctx context.Context, interval, maxIdle time.Duration, onEvict func(ids []string)) error {
	if interval <= 0 || maxIdle <= 0 {
		return fmt.Errorf("janitor interval and idle timeout must be positive")
	}
	ticker := m.clock.TickerFunc(ctx, interval, func() error {
		removed := m.Sweep(maxIdle)
		if len(removed) == 0 {
			return nil
		}
		m.logger.Debug("Evicted idle sessions", "count", len(removed), "remaining", m.Len())
		if onEvict != nil {
			onEvict(removed)
		}
		return nil
	}, "janitor")

	err := ticker.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
