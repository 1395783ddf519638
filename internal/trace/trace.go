// Package trace carries W3C-style trace identifiers through kiosk actions:
// from the page or CLI trigger, into the recognize request headers, and into logs.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

// Header/metadata keys used for propagation.
const (
	TraceIDKey      = "x-trace-id"
	SpanIDKey       = "x-span-id"
	ParentSpanIDKey = "x-parent-span-id"
)

type ctxKey struct{}

// Context identifies one span of a trace.
type Context struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
}

// New starts a fresh trace.
func New() Context {
	return Context{TraceID: newID(16), SpanID: newID(8)}
}

// child opens a new span under c.
func (c Context) child() Context {
	return Context{TraceID: c.TraceID, SpanID: newID(8), ParentSpanID: c.SpanID}
}

// Headers returns the propagation keys for c. The parent key is omitted for root spans.
func (c Context) Headers() map[string]string {
	h := map[string]string{TraceIDKey: c.TraceID, SpanIDKey: c.SpanID}
	if c.ParentSpanID != "" {
		h[ParentSpanIDKey] = c.ParentSpanID
	}
	return h
}

// fromCarrier continues the caller's trace found through get, making the
// caller's span the parent. A carrier without a trace ID starts a new trace.
func fromCarrier(get func(key string) string) Context {
	tc := Context{TraceID: get(TraceIDKey), SpanID: newID(8), ParentSpanID: get(SpanIDKey)}
	if tc.TraceID == "" {
		tc.TraceID = newID(16)
	}
	return tc
}

func newID(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext returns the trace attached to ctx.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

// WithContext attaches tc to ctx.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// Continue opens a span under a caller-supplied trace ID (websocket actions
// carry one). Without an ID it keeps ctx's trace, or starts one.
func Continue(ctx context.Context, traceID string) context.Context {
	if traceID != "" {
		return WithContext(ctx, Context{TraceID: traceID}.child())
	}
	if _, ok := FromContext(ctx); ok {
		return ctx
	}
	return WithContext(ctx, New())
}

// Span times one kiosk step and logs it at debug level when it ends.
type Span struct {
	Name  string
	Ctx   Context
	Start time.Time

	ctx   context.Context
	attrs []any
}

// StartSpan opens a child span of ctx's trace, or a new trace.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	tc := New()
	if parent, ok := FromContext(ctx); ok {
		tc = parent.child()
	}
	ctx = WithContext(ctx, tc)
	return ctx, &Span{Name: name, Ctx: tc, Start: time.Now(), ctx: ctx}
}

// SetAttr records a key/value logged with the span.
func (s *Span) SetAttr(key string, val any) {
	s.attrs = append(s.attrs, key, val)
}

// End logs the span and returns its duration.
func (s *Span) End() time.Duration {
	d := time.Since(s.Start)
	args := append([]any{"span", s.Name, "duration", d}, s.attrs...)
	Logger(s.ctx).Debug("span finished", args...)
	return d
}

// Logger returns the default logger annotated with ctx's trace IDs.
func Logger(ctx context.Context) *slog.Logger {
	tc, ok := FromContext(ctx)
	if !ok {
		return slog.Default()
	}
	log := slog.Default().With("trace_id", tc.TraceID, "span_id", tc.SpanID)
	if tc.ParentSpanID != "" {
		log = log.With("parent_span_id", tc.ParentSpanID)
	}
	return log
}
