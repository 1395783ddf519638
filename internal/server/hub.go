package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/render"
)

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// client is one connected page. A single writer goroutine drains send, so
// messages reach the page in the order they were queued.
type client struct {
	conn *websocket.Conn
	send chan any
	rl   rateLimiter
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan any, SendQueueSize)}
}

// enqueue queues msg without blocking; it reports false when the page is
// too far behind and the message was dropped.
func (c *client) enqueue(msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, WriteTimeout)
			err := wsjson.Write(wctx, c.conn, msg)
			cancel()
			if err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

// Hub tracks connected pages and pushes results and preview frames to them.
// It implements kiosk.Display and preview.Publisher.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*client]struct{}
	lastResult  *ResultMessage
	lastPreview *PreviewMessage
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	result, preview := h.lastResult, h.lastPreview
	h.mu.Unlock()

	// Bring the new page up to date.
	if result != nil {
		c.enqueue(result)
	}
	if preview != nil {
		c.enqueue(preview)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Count returns the number of connected pages.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.enqueue(msg) {
			slog.Debug("websocket client lagging, message dropped")
		}
	}
}

// Show pushes an outcome into every page's result area.
func (h *Hub) Show(o render.Outcome) {
	msg := &ResultMessage{
		Type:  "result",
		State: o.Kind.String(),
		Level: string(o.Level),
		HTML:  o.HTML,
		Text:  o.Text,
	}
	h.mu.Lock()
	h.lastResult = msg
	h.mu.Unlock()
	h.broadcast(msg)
}

// PublishPreview pushes a live frame to every page.
func (h *Hub) PublishPreview(jpeg []byte) {
	msg := &PreviewMessage{Type: "preview", JPEGB64: base64.StdEncoding.EncodeToString(jpeg)}
	h.mu.Lock()
	h.lastPreview = msg
	h.mu.Unlock()
	h.broadcast(msg)
}

// StreamChanged tells pages the camera was bound or released.
func (h *Hub) StreamChanged(s camera.Stream) {
	msg := StatusMessage{Type: "status"}
	if s != nil {
		msg.Streaming = true
		msg.Width, msg.Height = s.Dimensions()
	} else {
		h.mu.Lock()
		h.lastPreview = nil
		h.mu.Unlock()
	}
	h.broadcast(msg)
}
