package syncx

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLatestGetSet(t *testing.T) {
	l := NewLatest(42)

	v, ver := l.Get()
	if v != 42 || ver != 0 {
		t.Errorf("Get() = (%d, %d), want (42, 0)", v, ver)
	}

	l.Set(100)
	v, ver = l.Get()
	if v != 100 || ver != 1 {
		t.Errorf("Get() after Set = (%d, %d), want (100, 1)", v, ver)
	}
}

func TestLatestSwap(t *testing.T) {
	l := NewLatest("hello")

	old := l.Swap("world")
	if old != "hello" {
		t.Errorf("Swap returned %q, want %q", old, "hello")
	}
	if v, _ := l.Get(); v != "world" {
		t.Errorf("Get() after Swap = %q, want %q", v, "world")
	}
}

func TestLatestRead(t *testing.T) {
	l := NewLatest([]int{1, 2, 3})

	result := l.Read(func(v []int) any {
		return len(v)
	})

	if result != 3 {
		t.Errorf("Read() = %v, want 3", result)
	}
}

func TestLatestChangedWakesWaiter(t *testing.T) {
	l := NewLatest(0)
	_, ver := l.Get()
	ch := l.Changed(ver)

	select {
	case <-ch:
		t.Fatal("Changed fired before any Set")
	default:
	}

	go l.Set(1)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Changed did not fire after Set")
	}
}

func TestLatestChangedAlreadyPast(t *testing.T) {
	l := NewLatest(0)
	l.Set(1)
	l.Set(2)

	select {
	case <-l.Changed(0):
	default:
		t.Error("Changed(0) should be closed once version moved past 0")
	}
}

func TestLatestConcurrentAccess(t *testing.T) {
	l := NewLatest(0)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			l.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = l.Get()
		}()
	}
	wg.Wait()

	if _, ver := l.Get(); ver != 50 {
		t.Errorf("version = %d, want 50", ver)
	}
}

func TestTokenExclusive(t *testing.T) {
	var tok Token

	if !tok.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if tok.TryAcquire() {
		t.Error("second TryAcquire should fail while held")
	}
	if !tok.Held() {
		t.Error("Held() should be true")
	}

	tok.Release()
	if tok.Held() {
		t.Error("Held() should be false after Release")
	}
	if !tok.TryAcquire() {
		t.Error("TryAcquire should succeed after Release")
	}
}

func TestTokenConcurrentSingleWinner(t *testing.T) {
	var tok Token
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tok.TryAcquire() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("winners = %d, want 1", wins.Load())
	}
}
