package recognize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
	"github.com/GriffinCanCode/facekiosk/internal/trace"
)

const sampleURL = "data:image/jpeg;base64,/9j/AAAA"

func TestRecognizePostsJSON(t *testing.T) {
	var got Request
	var contentType, traceID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		traceID = r.Header.Get(trace.TraceIDKey)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true,"match":{"id":7,"name":"Asha","role":"student","class_name":"10-B"},"distance":0.31,"within_window":true}`))
	}))
	defer srv.Close()

	tc := trace.New()
	ctx := trace.WithContext(context.Background(), tc)

	resp, err := New(srv.URL, 0).Recognize(ctx, sampleURL)
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}

	if got.ImageB64 != sampleURL {
		t.Errorf("image_b64 = %q, want %q", got.ImageB64, sampleURL)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if traceID != tc.TraceID {
		t.Errorf("trace header = %q, want %q", traceID, tc.TraceID)
	}
	if !resp.OK || resp.Match == nil || resp.Match.Name != "Asha" || resp.Match.ClassName != "10-B" {
		t.Errorf("resp = %+v", resp)
	}
	if !resp.WithinWindow {
		t.Error("within_window should decode true")
	}
	if resp.Distance == nil || *resp.Distance != 0.31 {
		t.Errorf("distance = %v", resp.Distance)
	}
}

func TestRecognizeDecodesErrorStatusBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error":"No face detected"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, 0).Recognize(context.Background(), sampleURL)
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if resp.OK || resp.Error != "No face detected" {
		t.Errorf("resp = %+v, want ok=false with server error", resp)
	}
}

func TestRecognizeNullMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"match":null,"distance":0.9}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, 0).Recognize(context.Background(), sampleURL)
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if resp.Match != nil {
		t.Errorf("match = %+v, want nil", resp.Match)
	}
}

func TestRecognizeInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Recognize(context.Background(), sampleURL)
	if !apperrors.IsCode(err, apperrors.Decode) {
		t.Fatalf("err = %v, want DECODE", err)
	}
	appErr, _ := apperrors.As(err)
	if !strings.Contains(appErr.Description(), "HTTP 502") {
		t.Errorf("Description() = %q, should mention the status", appErr.Description())
	}
}

func TestRecognizeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, 0).Recognize(context.Background(), sampleURL)
	if !apperrors.IsCode(err, apperrors.Transport) {
		t.Fatalf("err = %v, want TRANSPORT", err)
	}
	appErr, _ := apperrors.As(err)
	if appErr.Description() == "" {
		t.Error("transport error should carry the platform description")
	}
}

func TestRecognizeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 20*time.Millisecond).Recognize(context.Background(), sampleURL)
	if !apperrors.IsCode(err, apperrors.Transport) {
		t.Errorf("err = %v, want TRANSPORT", err)
	}
}
