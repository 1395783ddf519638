// Package kiosk implements the capture controller: start the camera, snap a
// frame, send it for recognition and show the result.
package kiosk

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/canvas"
	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
	"github.com/GriffinCanCode/facekiosk/internal/recognize"
	"github.com/GriffinCanCode/facekiosk/internal/render"
	"github.com/GriffinCanCode/facekiosk/internal/syncx"
	"github.com/GriffinCanCode/facekiosk/internal/trace"
)

// Recognizer sends an encoded frame for recognition.
type Recognizer interface {
	Recognize(ctx context.Context, dataURL string) (*recognize.Response, error)
}

// Controller owns the camera stream, the drawing surface, the recognizer
// and the result display.
type Controller struct {
	device     camera.Device
	recognizer Recognizer
	display    Display
	quality    float64
	facing     string
	hooks      []func(camera.Stream)

	// lifecycle serializes Start, Release and Close.
	lifecycle sync.Mutex
	stream    atomic.Pointer[streamRef]
	closed    atomic.Bool

	busy    syncx.Token
	surface *canvas.Surface // only touched while busy is held

	// life is cancelled by Close; it is the only thing that aborts an
	// in-flight recognition.
	life     context.Context
	shutdown context.CancelFunc
}

type streamRef struct{ camera.Stream }

// Option configures a Controller.
type Option func(*Controller)

// WithQuality sets the JPEG quality on the 0..1 scale.
func WithQuality(q float64) Option {
	return func(c *Controller) { c.quality = q }
}

// WithFacingMode sets the requested camera facing mode.
func WithFacingMode(mode string) Option {
	return func(c *Controller) { c.facing = mode }
}

// OnStream registers fn to be called with each newly bound stream, and with
// nil when the stream is released.
func OnStream(fn func(camera.Stream)) Option {
	return func(c *Controller) { c.hooks = append(c.hooks, fn) }
}

// New creates a controller. A nil display discards outcomes.
func New(device camera.Device, recognizer Recognizer, display Display, opts ...Option) *Controller {
	if display == nil {
		display = Discard
	}
	life, shutdown := context.WithCancel(context.Background())
	c := &Controller{
		life:       life,
		shutdown:   shutdown,
		device:     device,
		recognizer: recognizer,
		display:    display,
		quality:    DefaultQuality,
		facing:     camera.FacingUser,
		surface:    canvas.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start requests a video-only stream and binds it as the live source.
// Any stream from an earlier Start is stopped first.
func (c *Controller) Start(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "camera.start")
	defer span.End()
	log := trace.Logger(ctx)

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.closed.Load() {
		return apperrors.New(apperrors.Closed, "controller closed")
	}
	c.releaseLocked(ctx)

	s, err := c.device.Open(ctx, camera.Constraints{Video: true, Audio: false, FacingMode: c.facing})
	if err != nil {
		log.Error("camera start failed", "error", err)
		c.display.Show(render.CameraFailed(err))
		return err
	}

	c.stream.Store(&streamRef{s})
	c.notify(s)
	w, h := s.Dimensions()
	log.Info("camera started", "width", w, "height", h)
	return nil
}

// Release stops the current stream, if any, keeping the controller usable.
func (c *Controller) Release(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.releaseLocked(ctx)
}

func (c *Controller) releaseLocked(ctx context.Context) {
	ref := c.stream.Swap(nil)
	if ref == nil {
		return
	}
	if err := ref.Stop(); err != nil {
		trace.Logger(ctx).Warn("camera stop failed", "error", err)
	}
	c.notify(nil)
	trace.Logger(ctx).Info("camera released")
}

func (c *Controller) notify(s camera.Stream) {
	for _, fn := range c.hooks {
		fn(s)
	}
}

// Snap captures the current frame, sends it for recognition and shows the
// outcome. It returns errors.Busy, without showing anything, while another
// Snap is awaiting its response.
func (c *Controller) Snap(ctx context.Context) (render.Outcome, error) {
	if c.closed.Load() {
		return render.Outcome{}, apperrors.New(apperrors.Closed, "controller closed")
	}
	if !c.busy.TryAcquire() {
		return render.Outcome{}, apperrors.New(apperrors.Busy, "recognition already in progress")
	}
	defer c.busy.Release()

	ctx, span := trace.StartSpan(ctx, "camera.snap")
	defer span.End()
	log := trace.Logger(ctx)

	fr, ok := c.currentFrame()
	if !ok {
		return c.show(span, render.FrameNotReady()), nil
	}

	c.surface.Resize(fr.Width, fr.Height)
	c.surface.Draw(fr.Image)
	dataURL, err := c.surface.EncodeDataURL(c.quality)
	if err != nil {
		log.Error("frame encode failed", "error", err)
		return c.show(span, render.RequestError(err)), nil
	}
	span.SetAttr("width", fr.Width)
	span.SetAttr("height", fr.Height)

	c.display.Show(render.Scan())

	// The caller going away (a closed page, a finished HTTP request) does
	// not abort the request; Close does.
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	defer context.AfterFunc(c.life, cancel)()

	resp, err := c.recognizer.Recognize(reqCtx, dataURL)
	if err != nil {
		log.Error("recognition request failed", "error", err)
		return c.show(span, render.RequestError(err)), nil
	}

	out := render.Classify(resp)
	log.Info("recognition finished", "outcome", out.Kind.String())
	return c.show(span, out), nil
}

func (c *Controller) show(span *trace.Span, o render.Outcome) render.Outcome {
	span.SetAttr("outcome", o.Kind.String())
	c.display.Show(o)
	return o
}

// currentFrame returns the latest frame when the stream has non-zero dimensions.
func (c *Controller) currentFrame() (camera.Frame, bool) {
	ref := c.stream.Load()
	if ref == nil {
		return camera.Frame{}, false
	}
	if w, h := ref.Dimensions(); w == 0 || h == 0 {
		return camera.Frame{}, false
	}
	return ref.Frame()
}

// SurfaceSize reports the drawing surface dimensions after the last Snap.
func (c *Controller) SurfaceSize() (int, int) {
	if !c.busy.TryAcquire() {
		return 0, 0
	}
	defer c.busy.Release()
	return c.surface.Size()
}

// Status is a point-in-time view of the controller.
type Status struct {
	Streaming bool `json:"streaming"`
	Busy      bool `json:"busy"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
}

// Status reports whether a stream is bound and a recognition is in flight.
func (c *Controller) Status() Status {
	st := Status{Busy: c.busy.Held()}
	if ref := c.stream.Load(); ref != nil {
		st.Streaming = true
		st.Width, st.Height = ref.Dimensions()
	}
	return st
}

// Stream returns the bound stream, or nil.
func (c *Controller) Stream() camera.Stream {
	if ref := c.stream.Load(); ref != nil {
		return ref.Stream
	}
	return nil
}

// Close stops the stream and rejects further actions. Safe to call twice.
func (c *Controller) Close() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.closed.Swap(true) {
		return nil
	}
	c.shutdown()
	c.releaseLocked(context.Background())
	return nil
}
