package camera

import (
	"context"
	"image"
	"testing"
	"time"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

func testFrame(w, h int) Frame {
	return Frame{Image: image.NewRGBA(image.Rect(0, 0, w, h)), Width: w, Height: h, At: time.Now()}
}

func TestFeedDimensionsBeforeFirstFrame(t *testing.T) {
	f := NewFeed(nil)

	if w, h := f.Dimensions(); w != 0 || h != 0 {
		t.Errorf("Dimensions() = %dx%d, want 0x0", w, h)
	}
	if _, ok := f.Frame(); ok {
		t.Error("Frame() should report false before any frame")
	}

	f.Publish(testFrame(640, 480))

	if w, h := f.Dimensions(); w != 640 || h != 480 {
		t.Errorf("Dimensions() = %dx%d, want 640x480", w, h)
	}
}

func TestFeedSubscribeLatestWins(t *testing.T) {
	f := NewFeed(nil)
	ch, cancel := f.Subscribe()
	defer cancel()

	f.Publish(testFrame(10, 10))
	f.Publish(testFrame(20, 20))

	select {
	case fr := <-ch:
		if fr.Width != 20 {
			t.Errorf("got width %d, want newest frame (20)", fr.Width)
		}
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestFeedStopCancelsAndClosesSubscribers(t *testing.T) {
	cancelled := make(chan struct{})
	var f *Feed
	f = NewFeed(func() {
		close(cancelled)
		go f.Finish(nil)
	})
	ch, _ := f.Subscribe()

	if err := f.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	select {
	case <-cancelled:
	default:
		t.Error("Stop should invoke cancel")
	}
	if _, ok := <-ch; ok {
		t.Error("subscription should be closed after Stop")
	}

	// Second Stop must not block or re-cancel.
	if err := f.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}

	late, _ := f.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing after Stop should yield a closed channel")
	}
}

func TestFeedUnsubscribe(t *testing.T) {
	f := NewFeed(nil)
	ch, cancel := f.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	f.Publish(testFrame(1, 1))
}

func TestWaitFrame(t *testing.T) {
	f := NewFeed(nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Publish(testFrame(320, 240))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	fr, err := WaitFrame(ctx, f)
	if err != nil {
		t.Fatalf("WaitFrame() error: %v", err)
	}
	if fr.Width != 320 || fr.Height != 240 {
		t.Errorf("frame = %dx%d, want 320x240", fr.Width, fr.Height)
	}
}

func TestWaitFrameTimeout(t *testing.T) {
	f := NewFeed(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WaitFrame(ctx, f)
	if !apperrors.IsCode(err, apperrors.FrameNotReady) {
		t.Errorf("err = %v, want FRAME_NOT_READY", err)
	}
}

func TestWaitFrameStreamEnded(t *testing.T) {
	f := NewFeed(nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Finish(nil)
	}()

	_, err := WaitFrame(context.Background(), f)
	if !apperrors.IsCode(err, apperrors.Closed) {
		t.Errorf("err = %v, want CLOSED", err)
	}
}
