package camera

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg and returns its path.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeJPEG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func videoOnly() Constraints {
	return Constraints{Video: true, FacingMode: FacingUser}
}

func TestFFmpegArgsVideoOnly(t *testing.T) {
	d := NewFFmpeg("")
	args := d.Args(videoOnly())

	for _, want := range []string{"-an", "image2pipe", "mjpeg", "-i"} {
		if !slices.Contains(args, want) {
			t.Errorf("args %v missing %q", args, want)
		}
	}
	if args[len(args)-1] != "-" {
		t.Errorf("ffmpeg should write to stdout, args end with %q", args[len(args)-1])
	}
}

func TestFFmpegArgsVideoSize(t *testing.T) {
	d := NewFFmpeg("")
	c := videoOnly()
	c.Width, c.Height = 1280, 720

	args := d.Args(c)
	i := slices.Index(args, "-video_size")
	if i < 0 || args[i+1] != "1280x720" {
		t.Errorf("args %v should request 1280x720", args)
	}
}

func TestFFmpegOpenFirstFrame(t *testing.T) {
	frame := writeJPEG(t, 64, 48)
	d := &FFmpeg{Path: fakeFFmpeg(t, `cat "`+frame+`"; exec sleep 30`)}

	s, err := d.Open(context.Background(), videoOnly())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Stop()

	if w, h := s.Dimensions(); w != 64 || h != 48 {
		t.Errorf("Dimensions() = %dx%d, want 64x48", w, h)
	}
	fr, ok := s.Frame()
	if !ok || len(fr.JPEG) == 0 {
		t.Error("latest frame should keep the encoded bytes")
	}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestFFmpegOpenPermissionDenied(t *testing.T) {
	d := &FFmpeg{Path: fakeFFmpeg(t, `echo "/dev/video0: Permission denied" >&2; exit 1`)}

	_, err := d.Open(context.Background(), videoOnly())
	if !apperrors.IsCode(err, apperrors.CameraPermissionDenied) {
		t.Fatalf("err = %v, want CAMERA_PERMISSION_DENIED", err)
	}
	appErr, _ := apperrors.As(err)
	if appErr.Description() != "/dev/video0: Permission denied" {
		t.Errorf("Description() = %q, want ffmpeg's text verbatim", appErr.Description())
	}
}

func TestFFmpegOpenDeviceMissing(t *testing.T) {
	d := &FFmpeg{Path: fakeFFmpeg(t, `echo "/dev/video9: No such file or directory" >&2; exit 1`)}

	_, err := d.Open(context.Background(), videoOnly())
	if !apperrors.IsCode(err, apperrors.CameraUnavailable) {
		t.Errorf("err = %v, want CAMERA_UNAVAILABLE", err)
	}
}

func TestFFmpegOpenBinaryMissing(t *testing.T) {
	d := &FFmpeg{Path: filepath.Join(t.TempDir(), "no-such-ffmpeg")}

	_, err := d.Open(context.Background(), videoOnly())
	if !apperrors.IsCode(err, apperrors.CameraUnavailable) {
		t.Errorf("err = %v, want CAMERA_UNAVAILABLE", err)
	}
}

func TestFFmpegRejectsAudio(t *testing.T) {
	d := NewFFmpeg("")
	_, err := d.Open(context.Background(), Constraints{Video: true, Audio: true})
	if !apperrors.IsCode(err, apperrors.CameraUnavailable) {
		t.Errorf("err = %v, want CAMERA_UNAVAILABLE", err)
	}
}

func TestClassifyExit(t *testing.T) {
	tests := []struct {
		stderr string
		want   apperrors.Code
	}{
		{"[video4linux2] Permission denied", apperrors.CameraPermissionDenied},
		{"warning\nnot authorized to capture video", apperrors.CameraPermissionDenied},
		{"Input/output error", apperrors.CameraUnavailable},
		{"", apperrors.CameraUnavailable},
	}

	for _, tt := range tests {
		if got := apperrors.CodeOf(classifyExit(nil, tt.stderr)); got != tt.want {
			t.Errorf("classifyExit(%q) = %s, want %s", tt.stderr, got, tt.want)
		}
	}
}
