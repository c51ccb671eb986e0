// ABOUTME: Thread-safe TTL window for suppressing repeated events.
// ABOUTME: Used by the mesh event relay to keep node-update chatter off the control channel.

package dedupe

import (
	"sync"
	"time"
)

// Window tracks recently seen keys for a fixed time-to-live. It answers one
// question: has this key fired within the window? Entries are swept by a
// background goroutine and the map is capped so a misbehaving event source
// cannot grow it without bound.
type Window struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a suppression window with the given TTL and maximum entry count.
func New(ttl time.Duration, maxSize int) *Window {
	w := &Window{
		seen:    make(map[string]time.Time),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go w.sweepLoop()
	return w
}

// Suppress reports whether the key fired within the window, and marks it
// either way. The check and the mark are one atomic step so two concurrent
// callers can never both see "new".
func (w *Window) Suppress(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if at, ok := w.seen[key]; ok && now.Sub(at) < w.ttl {
		return true
	}

	if len(w.seen) >= w.maxSize {
		w.evictOldestLocked()
	}
	w.seen[key] = now
	return false
}

// Forget drops a key so its next occurrence is not suppressed.
func (w *Window) Forget(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.seen, key)
}

// Len returns the current entry count.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

// evictOldestLocked removes the entry with the oldest timestamp. Linear scan;
// the map is capped small enough that this never matters.
func (w *Window) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, at := range w.seen {
		if first || at.Before(oldestAt) {
			oldestKey, oldestAt = k, at
			first = false
		}
	}
	if !first {
		delete(w.seen, oldestKey)
	}
}

// sweepLoop periodically removes expired entries.
func (w *Window) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.done:
			return
		}
	}
}

// sweep removes every expired entry.
func (w *Window) sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	for k, at := range w.seen {
		if now.Sub(at) >= w.ttl {
			delete(w.seen, k)
		}
	}
}

// Close stops the background sweeper. Safe to call multiple times.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.done)
	}
}
