//go:build opencv

// Package opencv opens cameras through OpenCV's VideoCapture.
package opencv

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"time"

	"gocv.io/x/gocv"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

const readBackoff = 10 * time.Millisecond

// Device opens a camera by index ("0") or by path/URL.
type Device struct {
	ID string
}

// New returns an OpenCV-backed device.
func New(id string) *Device {
	return &Device{ID: id}
}

func (d *Device) source() any {
	if n, err := strconv.Atoi(d.ID); err == nil {
		return n
	}
	if d.ID == "" {
		return 0
	}
	return d.ID
}

// Open starts a capture loop. OpenCV never opens audio.
func (d *Device) Open(ctx context.Context, c camera.Constraints) (camera.Stream, error) {
	if !c.Video || c.Audio {
		return nil, apperrors.New(apperrors.CameraUnavailable, "only video-only streams are supported")
	}

	webcam, err := gocv.OpenVideoCapture(d.source())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CameraUnavailable, "open video capture")
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return nil, apperrors.Newf(apperrors.CameraUnavailable, "camera %q could not be opened", d.ID)
	}
	if c.Width > 0 && c.Height > 0 {
		webcam.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
		webcam.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	feed := camera.NewFeed(cancel)

	go func() {
		defer webcam.Close()
		img := gocv.NewMat()
		defer img.Close()

		for runCtx.Err() == nil {
			if ok := webcam.Read(&img); !ok || img.Empty() {
				time.Sleep(readBackoff)
				continue
			}
			fr, err := toFrame(img)
			if err != nil {
				slog.Debug("dropping frame", "error", err)
				continue
			}
			feed.Publish(fr)
		}
		feed.Finish(nil)
	}()

	return feed, nil
}

func toFrame(img gocv.Mat) (camera.Frame, error) {
	pic, err := img.ToImage()
	if err != nil {
		return camera.Frame{}, err
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return camera.Frame{}, err
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	b := pic.Bounds()
	return camera.Frame{Image: pic, JPEG: data, Width: b.Dx(), Height: b.Dy(), At: time.Now()}, nil
}
