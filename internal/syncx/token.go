package syncx

import "sync/atomic"

// Token is a non-blocking mutual exclusion flag: one holder at a time,
// contenders are turned away instead of queued.
type Token struct {
	held atomic.Bool
}

// TryAcquire takes the token if it is free.
func (t *Token) TryAcquire() bool {
	return t.held.CompareAndSwap(false, true)
}

// Release frees the token. Releasing a free token is a no-op.
func (t *Token) Release() {
	t.held.Store(false)
}

// Held reports whether the token is currently taken.
func (t *Token) Held() bool {
	return t.held.Load()
}
