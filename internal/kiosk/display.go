package kiosk

import (
	"context"
	"log/slog"

	"github.com/GriffinCanCode/facekiosk/internal/render"
)

// DefaultQuality is the JPEG quality used for recognition frames.
const DefaultQuality = 0.9

// Display shows outcomes in the result area. Implementations serialize
// their own writes.
type Display interface {
	Show(o render.Outcome)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(render.Outcome)

func (f DisplayFunc) Show(o render.Outcome) { f(o) }

// Discard drops every outcome.
var Discard Display = DisplayFunc(func(render.Outcome) {})

// Displays fans an outcome out to several displays in order.
type Displays []Display

func (ds Displays) Show(o render.Outcome) {
	for _, d := range ds {
		d.Show(o)
	}
}

// LogDisplay writes outcomes to a structured logger.
type LogDisplay struct {
	Logger *slog.Logger
}

func (d LogDisplay) Show(o render.Outcome) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	level := slog.LevelInfo
	switch o.Level {
	case render.Danger:
		level = slog.LevelError
	case render.Warning:
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "result", "state", o.Kind.String(), "message", o.Text)
}
