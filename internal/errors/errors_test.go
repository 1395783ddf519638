package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := New(FrameNotReady, "no frame decoded yet")
	if got := err.Error(); got != "[FRAME_NOT_READY] no frame decoded yet" {
		t.Errorf("Error() = %q", got)
	}

	err.WithMetadata("device", "/dev/video0")
	if !strings.Contains(err.Error(), "device:/dev/video0") {
		t.Errorf("metadata missing from %q", err.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, Transport, "recognize request")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !strings.Contains(err.Error(), "caused by: connection refused") {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Description() != "connection refused" {
		t.Errorf("Description() = %q, want cause text", err.Description())
	}
}

func TestDescriptionWithoutCause(t *testing.T) {
	err := Newf(CameraUnavailable, "device %s missing", "/dev/video3")
	if err.Description() != "device /dev/video3 missing" {
		t.Errorf("Description() = %q", err.Description())
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(Busy, "recognition in flight")
	outer := fmt.Errorf("snap: %w", inner)

	if !IsCode(outer, Busy) {
		t.Error("IsCode should see through fmt wrapping")
	}
	if IsCode(outer, Transport) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(nil, Unknown) {
		t.Error("nil error should never match")
	}
	if CodeOf(errors.New("plain")) != Unknown {
		t.Error("plain errors should map to Unknown")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(Busy, "x"), http.StatusConflict},
		{New(FrameNotReady, "x"), http.StatusPreconditionFailed},
		{New(CameraPermissionDenied, "x"), http.StatusForbidden},
		{New(CameraUnavailable, "x"), http.StatusServiceUnavailable},
		{New(Transport, "x"), http.StatusBadGateway},
		{New(Code("SOMETHING_NEW"), "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
