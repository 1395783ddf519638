package trace

import "net/http"

// Middleware continues or starts a trace for each request and echoes the
// trace ID so the page can correlate its action with kiosk logs.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := fromCarrier(r.Header.Get)
		w.Header().Set(TraceIDKey, tc.TraceID)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
	})
}

// Inject writes the request context's trace headers onto an outgoing request.
// A request without a trace gets a fresh one.
func Inject(r *http.Request) {
	tc, ok := FromContext(r.Context())
	if !ok {
		tc = New()
	}
	for k, v := range tc.Headers() {
		r.Header.Set(k, v)
	}
}
