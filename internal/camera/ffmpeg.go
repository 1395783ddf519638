package camera

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

// FFmpeg opens the platform camera through an ffmpeg subprocess that
// writes MJPEG frames to stdout.
type FFmpeg struct {
	// Path to the ffmpeg binary; looked up on PATH when empty.
	Path string
	// Device is the platform input name, e.g. /dev/video0 or "0".
	Device string
}

// NewFFmpeg returns an ffmpeg-backed device for the given input.
func NewFFmpeg(device string) *FFmpeg {
	return &FFmpeg{Path: "ffmpeg", Device: device}
}

// Args builds the ffmpeg command line for this device.
func (d *FFmpeg) Args(c Constraints) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, inputArgs(d.Device, c)...)
	// Drop any audio track the input might carry.
	args = append(args, "-an", "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "3", "-")
	return args
}

// Open starts ffmpeg and returns once the first frame arrives, ffmpeg fails,
// or OpenProbeTimeout passes, whichever comes first.
func (d *FFmpeg) Open(ctx context.Context, c Constraints) (Stream, error) {
	if !c.Video || c.Audio {
		return nil, apperrors.New(apperrors.CameraUnavailable, "only video-only streams are supported")
	}
	bin := d.Path
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CameraUnavailable, "ffmpeg not found")
	}
	if c.FacingMode != "" && c.FacingMode != FacingUser {
		slog.Debug("facing mode ignored by ffmpeg device", "facing_mode", c.FacingMode)
	}

	// The stream outlives the request that opened it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(runCtx, path, d.Args(c)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, apperrors.Wrap(err, apperrors.CameraUnavailable, "ffmpeg stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, apperrors.Wrap(err, apperrors.CameraUnavailable, "start ffmpeg")
	}

	feed := NewFeed(cancel)
	first := make(chan struct{})

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, scanInitialBuffer), scanMaxBuffer)
		scanner.Split(SplitJpeg)

		frames := 0
		for scanner.Scan() {
			data := bytes.Clone(scanner.Bytes())
			img, err := jpeg.Decode(bytes.NewReader(data))
			if err != nil {
				slog.Debug("dropping undecodable frame", "error", err, "bytes", len(data))
				continue
			}
			b := img.Bounds()
			feed.Publish(Frame{Image: img, JPEG: data, Width: b.Dx(), Height: b.Dy(), At: time.Now()})
			if frames == 0 {
				close(first)
			}
			frames++
		}

		waitErr := cmd.Wait()
		if runCtx.Err() != nil {
			// Stopped by us; the kill is not a failure.
			feed.Finish(nil)
			return
		}
		feed.Finish(classifyExit(waitErr, stderr.String()))
	}()

	timer := time.NewTimer(OpenProbeTimeout)
	defer timer.Stop()

	select {
	case <-first:
	case <-feed.Done():
		if err := feed.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.New(apperrors.CameraUnavailable, "camera produced no frames")
	case <-timer.C:
		slog.Debug("camera opened without a frame yet", "device", d.Device)
	case <-ctx.Done():
		_ = feed.Stop()
		return nil, apperrors.Wrap(ctx.Err(), apperrors.CameraUnavailable, "open camera")
	}
	return feed, nil
}

// classifyExit turns an ffmpeg exit into a device error carrying its stderr.
func classifyExit(waitErr error, stderr string) error {
	msg := lastLine(stderr)
	if msg == "" {
		if waitErr == nil {
			msg = "camera stream ended"
		} else {
			msg = waitErr.Error()
		}
	}
	code := apperrors.CameraUnavailable
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "not authorized") {
		code = apperrors.CameraPermissionDenied
	}
	return apperrors.Wrap(fmt.Errorf("%s", msg), code, "ffmpeg exited")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return strings.TrimSpace(s)
}

func videoSize(c Constraints) []string {
	if c.Width > 0 && c.Height > 0 {
		return []string{"-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height)}
	}
	return nil
}
