// Package camera provides video-only camera streams backed by ffmpeg or OpenCV.
package camera

import (
	"context"
	"image"
	"time"
)

// Constraints describe the stream a caller wants from a device.
type Constraints struct {
	Video      bool
	Audio      bool
	FacingMode string
	Width      int
	Height     int
}

// Frame is one decoded picture from a stream.
type Frame struct {
	Image  image.Image
	JPEG   []byte // encoded bytes as produced by the device, if any
	Width  int
	Height int
	At     time.Time
}

// Empty reports whether the frame carries no pixels.
func (f Frame) Empty() bool {
	return f.Image == nil || f.Width == 0 || f.Height == 0
}

// Stream is a live handle to an opened camera.
type Stream interface {
	// Dimensions of the most recent frame; 0x0 until the first frame decodes.
	Dimensions() (width, height int)
	// Frame returns the most recent frame, false if none has arrived.
	Frame() (Frame, bool)
	// Subscribe delivers frames as they arrive, dropping stale ones for slow
	// readers. The channel closes when the stream stops.
	Subscribe() (<-chan Frame, func())
	// Stop releases the device. Safe to call more than once.
	Stop() error
}

// Device opens streams.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}
