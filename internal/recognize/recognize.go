// Package recognize is the client for the face recognition endpoint.
package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
	"github.com/GriffinCanCode/facekiosk/internal/trace"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Request is the body posted to the recognition endpoint.
type Request struct {
	ImageB64 string `json:"image_b64"`
}

// Match identifies the recognised person.
type Match struct {
	ID        int    `json:"id,omitempty"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ClassName string `json:"class_name,omitempty"`
}

// Response is the endpoint's reply. Match is nil when nobody matched.
type Response struct {
	OK           bool     `json:"ok"`
	Error        string   `json:"error,omitempty"`
	Match        *Match   `json:"match,omitempty"`
	WithinWindow bool     `json:"within_window,omitempty"`
	Distance     *float64 `json:"distance,omitempty"`
}

// Client posts frames to the recognition endpoint.
type Client struct {
	url  string
	http *http.Client
}

// New creates a client for url. A zero timeout leaves requests unbounded.
func New(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// NewWithHTTPClient lets callers supply their own transport.
func NewWithHTTPClient(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, http: hc}
}

// URL returns the endpoint address.
func (c *Client) URL() string { return c.url }

// Recognize posts the data URL and decodes the reply. The body is decoded
// whatever the HTTP status: the endpoint reports rejections as JSON with a
// 4xx status.
func (c *Client) Recognize(ctx context.Context, dataURL string) (*Response, error) {
	ctx, span := trace.StartSpan(ctx, "recognize")
	defer span.End()

	body, err := json.Marshal(Request{ImageB64: dataURL})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Transport, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	trace.Inject(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Transport, "post frame")
	}
	defer resp.Body.Close()
	span.SetAttr("status", resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Transport, "read response")
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.Wrap(
			fmt.Errorf("invalid JSON response (HTTP %d): %w", resp.StatusCode, err),
			apperrors.Decode, "decode response",
		).WithMetadata("status", resp.Status)
	}

	log := trace.Logger(ctx)
	attrs := []any{"status", resp.StatusCode, "ok", out.OK, "matched", out.Match != nil}
	if out.Distance != nil {
		attrs = append(attrs, "distance", *out.Distance)
	}
	if out.Match != nil && out.Match.ID != 0 {
		attrs = append(attrs, "person_id", out.Match.ID)
	}
	log.Debug("recognize response", attrs...)

	return &out, nil
}
