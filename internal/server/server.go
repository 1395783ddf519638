package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/GriffinCanCode/facekiosk/internal/config"
	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
	"github.com/GriffinCanCode/facekiosk/internal/kiosk"
	"github.com/GriffinCanCode/facekiosk/internal/render"
	"github.com/GriffinCanCode/facekiosk/internal/trace"
)

// Controller is the capture controller as seen by the handlers.
type Controller interface {
	Start(ctx context.Context) error
	Snap(ctx context.Context) (render.Outcome, error)
	Release(ctx context.Context)
	Status() kiosk.Status
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	ctrl    Controller
	hub     *Hub
	origins []string
	page    pageData
}

// New creates a new server. Outcomes and preview frames reach the page
// through hub, which the caller wires as the controller's display.
func New(ctrl Controller, hub *Hub, cfg *config.Config) *Server {
	return &Server{
		ctrl:    ctrl,
		hub:     hub,
		origins: cfg.Origins,
		page:    pageData{Window: cfg.Attendance.Window, Timezone: cfg.Attendance.Timezone},
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware: trace -> security headers -> CORS
	r.Use(trace.Middleware)
	r.Use(securityHeaders(kioskHeaders()))
	r.Use(corsMiddleware(s.origins))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/camera", func(r chi.Router) {
		r.Use(maxBody(MaxBodyBytes))
		r.Get("/status", s.handleStatus)
		r.Post("/start", s.handleStart)
		r.Post("/snap", s.handleSnap)
		r.Post("/stop", s.handleStop)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, s.page); err != nil {
		trace.Logger(r.Context()).Error("render kiosk page", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Start(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{OK: true, State: "streaming", TraceID: traceID(r.Context())})
}

func (s *Server) handleSnap(w http.ResponseWriter, r *http.Request) {
	out, err := s.ctrl.Snap(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{
		OK:      out.Kind == render.Success,
		State:   out.Kind.String(),
		Message: out.Text,
		HTML:    out.HTML,
		TraceID: traceID(r.Context()),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Release(r.Context())
	writeJSON(w, http.StatusOK, ActionResponse{OK: true, State: "idle", TraceID: traceID(r.Context())})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.origins),
	})
	if err != nil {
		trace.Logger(r.Context()).Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	// The upgrade request's context ends with the connection.
	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	c := newClient(conn)
	go c.writeLoop(baseCtx)
	s.hub.add(c)
	defer s.hub.remove(c)

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		if !c.rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			c.enqueue(ErrorMessage{Type: "error", Code: "RATE_LIMITED", Message: "rate limit exceeded"})
			continue
		}

		var action ActionMessage
		if err := json.Unmarshal(msg, &action); err != nil {
			continue
		}
		ctx := trace.Continue(baseCtx, action.TraceID)

		switch action.Type {
		case "start", "snap", "stop":
			// Actions run beside the read loop so a second snap can be
			// turned away while the first awaits its response.
			go s.runAction(ctx, c, action.Type)
		default:
			log.Debug("unknown websocket message", "type", action.Type)
		}
	}
}

func (s *Server) runAction(ctx context.Context, c *client, action string) {
	ctx, span := trace.StartSpan(ctx, "ws."+action)
	defer span.End()

	var err error
	switch action {
	case "start":
		err = s.ctrl.Start(ctx)
	case "snap":
		_, err = s.ctrl.Snap(ctx)
	case "stop":
		s.ctrl.Release(ctx)
	}
	if err != nil {
		span.SetAttr("error", err.Error())
		c.enqueue(ErrorMessage{Type: "error", Code: string(apperrors.CodeOf(err)), Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	resp := ActionResponse{
		OK:      false,
		State:   "error",
		Code:    string(apperrors.CodeOf(err)),
		Error:   err.Error(),
		TraceID: traceID(r.Context()),
	}
	if appErr, ok := apperrors.As(err); ok {
		resp.Error = appErr.Description()
	}
	if status >= http.StatusInternalServerError {
		trace.Logger(r.Context()).Error("camera action failed", "error", err)
	}
	writeJSON(w, status, resp)
}

func traceID(ctx context.Context) string {
	tc, _ := trace.FromContext(ctx)
	return tc.TraceID
}
