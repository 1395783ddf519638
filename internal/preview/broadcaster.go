// Package preview forwards the live camera picture to the kiosk page,
// throttled and with near-identical frames dropped.
package preview

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
)

// Publisher receives preview frames as JPEG bytes.
type Publisher interface {
	PublishPreview(jpeg []byte)
}

// Broadcaster follows one stream at a time and publishes its frames.
type Broadcaster struct {
	pub      Publisher
	interval time.Duration
	maxDist  int

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	lastHash *goimagehash.ImageHash
	latest   []byte
}

// New creates a broadcaster publishing at most rate frames per second.
func New(pub Publisher, rate float64, maxHashDistance int) *Broadcaster {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Broadcaster{
		pub:      pub,
		interval: time.Duration(float64(time.Second) / rate),
		maxDist:  maxHashDistance,
	}
}

// Attach switches the broadcaster to s. A nil stream detaches it.
func (b *Broadcaster) Attach(s camera.Stream) {
	b.Detach()
	if s == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	frames, unsubscribe := s.Subscribe()
	done := make(chan struct{})

	b.mu.Lock()
	b.cancel = cancel
	b.done = done
	b.lastHash = nil
	b.mu.Unlock()

	go func() {
		defer close(done)
		defer unsubscribe()
		b.run(ctx, frames)
	}()
}

// Detach stops following the current stream and waits for the loop to exit.
func (b *Broadcaster) Detach() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Latest returns the last published frame, for newly connected viewers.
func (b *Broadcaster) Latest() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

func (b *Broadcaster) run(ctx context.Context, frames <-chan camera.Frame) {
	var lastSent time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case fr, ok := <-frames:
			if !ok {
				return
			}
			if fr.Empty() || time.Since(lastSent) < b.interval {
				continue
			}
			if b.shouldSkip(fr.Image) {
				continue
			}
			data, err := encode(fr)
			if err != nil {
				slog.Debug("preview encode failed", "error", err)
				continue
			}
			b.mu.Lock()
			b.latest = data
			b.mu.Unlock()
			b.pub.PublishPreview(data)
			lastSent = time.Now()
		}
	}
}

// shouldSkip computes the frame's pHash and reports whether it is within
// maxDist of the last published frame.
func (b *Broadcaster) shouldSkip(img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastHash == nil {
		b.lastHash = hash
		return false
	}

	dist, err := b.lastHash.Distance(hash)
	if err != nil {
		b.lastHash = hash
		return false
	}
	if dist <= b.maxDist {
		return true
	}

	b.lastHash = hash
	return false
}

func encode(fr camera.Frame) ([]byte, error) {
	if len(fr.JPEG) > 0 {
		return fr.JPEG, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fr.Image, &jpeg.Options{Quality: EncodeQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
