package camera

import (
	"sync"

	"github.com/GriffinCanCode/facekiosk/internal/syncx"
)

// Feed is the shared Stream implementation used by the device backends.
// A backend's reader goroutine calls Publish for every decoded frame and
// Finish once when it exits.
type Feed struct {
	latest *syncx.Latest[Frame]
	cancel func()
	done   chan struct{}

	mu      sync.Mutex
	subs    map[int]chan Frame
	nextSub int
	stopped bool
	err     error

	stopOnce sync.Once
}

// NewFeed returns a Feed whose Stop calls cancel and then waits for Finish.
func NewFeed(cancel func()) *Feed {
	if cancel == nil {
		cancel = func() {}
	}
	return &Feed{
		latest: syncx.NewLatest(Frame{}),
		cancel: cancel,
		done:   make(chan struct{}),
		subs:   make(map[int]chan Frame),
	}
}

// Publish stores fr as the latest frame and fans it out to subscribers.
func (f *Feed) Publish(fr Frame) {
	f.latest.Set(fr)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- fr:
		default:
			// Drop the stale frame so the reader sees the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- fr:
			default:
			}
		}
	}
}

// Finish records the reader's exit error and closes all subscriptions.
func (f *Feed) Finish(err error) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	f.err = err
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
	f.mu.Unlock()
	close(f.done)
}

// Done is closed once the reader has exited.
func (f *Feed) Done() <-chan struct{} { return f.done }

// Err returns the reader's exit error, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Feed) Dimensions() (int, int) {
	fr, _ := f.latest.Get()
	return fr.Width, fr.Height
}

func (f *Feed) Frame() (Frame, bool) {
	fr, _ := f.latest.Get()
	return fr, !fr.Empty()
}

func (f *Feed) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			close(c)
			delete(f.subs, id)
		}
	}
}

func (f *Feed) Stop() error {
	f.stopOnce.Do(f.cancel)
	<-f.done
	return nil
}
