// Package terminal shows kiosk outcomes on a console: a spinner while a
// recognition is in flight, then one status line per result.
package terminal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/GriffinCanCode/facekiosk/internal/render"
)

const spinInterval = 100 * time.Millisecond

// Display writes outcomes to out and the spinner to status.
type Display struct {
	out    io.Writer
	status io.Writer

	mu      sync.Mutex
	spinner *progressbar.ProgressBar
	stop    chan struct{}
	done    chan struct{}
	last    render.Outcome
}

// New creates a terminal display. Result lines go to out, the spinner to status.
func New(out, status io.Writer) *Display {
	return &Display{out: out, status: status}
}

// Show implements kiosk.Display.
func (d *Display) Show(o render.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopSpinnerLocked()
	d.last = o
	if o.Kind == render.Scanning {
		d.startSpinnerLocked(o.Text)
		return
	}
	fmt.Fprintf(d.out, "%s %s\n", icon(o.Level), o.Text)
}

// Last returns the most recent outcome shown.
func (d *Display) Last() render.Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Close stops a running spinner.
func (d *Display) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinnerLocked()
}

func (d *Display) startSpinnerLocked(desc string) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("🔍 "+desc),
		progressbar.OptionSetWriter(d.status),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	stop, done := make(chan struct{}), make(chan struct{})
	d.spinner, d.stop, d.done = bar, stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(spinInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
}

func (d *Display) stopSpinnerLocked() {
	if d.spinner == nil {
		return
	}
	close(d.stop)
	<-d.done
	_ = d.spinner.Finish()
	d.spinner, d.stop, d.done = nil, nil, nil
}

func icon(l render.Level) string {
	switch l {
	case render.Good:
		return "✅"
	case render.Warning:
		return "⚠️ "
	case render.Danger:
		return "🚨"
	default:
		return "ℹ️ "
	}
}
