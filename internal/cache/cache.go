// Package cache holds query results on the client and applies optimistic
// mutations to them.
//
// A mutation goes through Begin, then exactly one of Pending.Succeed or
// Pending.Fail. Begin writes the predicted value synchronously; settling
// either confirms it or undoes it while keeping what other mutations wrote,
// and always marks every affected key stale so the next Fetch reloads it
// from the server.
package cache

import (
	"context"
	"log/slog"
	"sync"
)

// Loader fetches a fresh value for a key
type Loader func(ctx context.Context) (any, error)

type entry struct {
	value   any
	present bool
	stale   bool

	// gen changes on every write so a fetch can tell its key was written
	// while it was in flight
	gen     uint64
	pending int
	flight  *flight
}

type flight struct {
	cancel context.CancelFunc
}

// QueryCache is a keyed store of query results owned by one session.
// It is safe for concurrent use.
type QueryCache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	versions map[string]uint64
	logger   *slog.Logger

	// journal of writes made while any mutation is open, so a rollback
	// can replay what other mutations wrote after it began
	seq     uint64
	journal []event
	open    []*Pending
}

// New creates an empty cache
func New(logger *slog.Logger) *QueryCache {
	return &QueryCache{
		entries:  make(map[Key]*entry),
		versions: make(map[string]uint64),
		logger:   logger,
	}
}

// entry returns the entry for key, creating it. Caller must hold c.mu.
func (c *QueryCache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Get returns the cached value, stale or not
func (c *QueryCache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.present {
		return nil, false
	}
	return e.value, true
}

// IsStale reports whether key holds a value that the next Fetch will reload
func (c *QueryCache) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.present && e.stale
}

// Set stores a server-confirmed value
func (c *QueryCache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	e.value, e.present, e.stale = value, true, false
	e.gen++
	c.record(nil, false, Put(key, value))
}

// Invalidate marks keys stale. Values stay readable until the reload lands.
func (c *QueryCache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
	}
}

// Cancel abandons the in-flight fetch for key. The request may still
// complete but its result is discarded.
func (c *QueryCache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.cancelFlight(key, e)
	}
}

// cancelFlight requires c.mu
func (c *QueryCache) cancelFlight(key Key, e *entry) {
	if e.flight == nil {
		return
	}
	e.flight.cancel()
	e.flight = nil
	c.logger.Debug("cancelled in-flight fetch", "key", key)
}

// Fetch returns the cached value for key, loading it when it is missing or
// stale. A new load replaces any earlier one still in flight.
//
// The loaded value is stored only if nothing wrote the key while the load
// was running and no mutation on it is still pending. Otherwise the caller
// gets the cached value, which is the newer one.
func (c *QueryCache) Fetch(ctx context.Context, key Key, load Loader) (any, error) {
	c.mu.Lock()
	e := c.entry(key)
	if e.present && !e.stale {
		value := e.value
		c.mu.Unlock()
		return value, nil
	}
	c.cancelFlight(key, e)
	loadCtx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}
	e.flight = f
	gen := e.gen
	c.mu.Unlock()

	value, err := load(loadCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	superseded := e.flight != f
	if !superseded {
		e.flight = nil
	}
	if superseded || e.gen != gen || e.pending > 0 {
		c.logger.Debug("discarded fetch result", "key", key, "superseded", superseded, "pending", e.pending)
		if e.present {
			return e.value, nil
		}
		return value, err
	}
	if err != nil {
		return nil, err
	}
	e.value, e.present, e.stale = value, true, false
	e.gen++
	return value, nil
}

// Load is Fetch with a typed loader and result
func Load[T any](ctx context.Context, c *QueryCache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := value.(T)
	return typed, nil
}

// Peek returns the cached value for key if it holds a T
func Peek[T any](c *QueryCache, key Key) (T, bool) {
	value, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}

// Version returns the current mutation version of an entity
func (c *QueryCache) Version(entityID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[entityID]
}
