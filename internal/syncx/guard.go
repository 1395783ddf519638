// Package syncx provides extended synchronization primitives
package syncx

import "sync"

// Latest holds the most recent value written by a producer. Readers never
// block the producer; they either take a snapshot or wait for a newer version.
type Latest[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	changed chan struct{}
}

// NewLatest creates a holder with an initial value at version 0.
func NewLatest[T any](initial T) *Latest[T] {
	return &Latest[T]{value: initial, changed: make(chan struct{})}
}

// Get returns the current value and its version.
func (l *Latest[T]) Get() (T, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.version
}

// Set replaces the value, bumps the version and wakes every waiter.
func (l *Latest[T]) Set(v T) {
	l.mu.Lock()
	l.value = v
	l.version++
	close(l.changed)
	l.changed = make(chan struct{})
	l.mu.Unlock()
}

// Swap replaces the value and returns the old one.
func (l *Latest[T]) Swap(v T) T {
	l.mu.Lock()
	old := l.value
	l.value = v
	l.version++
	close(l.changed)
	l.changed = make(chan struct{})
	l.mu.Unlock()
	return old
}

// Read executes fn while holding the read lock.
func (l *Latest[T]) Read(fn func(T) any) any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.value)
}

// Changed returns a channel closed on the next Set after version since, or an
// already closed channel if the value has moved past since.
func (l *Latest[T]) Changed(since uint64) <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.version > since {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return l.changed
}
