// Package render turns capture and recognition results into the messages
// shown in the kiosk's result area.
package render

import (
	"fmt"
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
	"github.com/GriffinCanCode/facekiosk/internal/recognize"
)

// Kind is the state a capture attempt ended in.
type Kind int

const (
	Idle Kind = iota
	Scanning
	NotReady
	CameraError
	Success
	NoMatch
	ServerError
	RequestFailed
)

var kindNames = [...]string{
	Idle:          "idle",
	Scanning:      "scanning",
	NotReady:      "not_ready",
	CameraError:   "camera_error",
	Success:       "success",
	NoMatch:       "no_match",
	ServerError:   "server_error",
	RequestFailed: "request_failed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Terminal reports whether k ends a snap.
func (k Kind) Terminal() bool {
	switch k {
	case Success, NoMatch, ServerError, RequestFailed:
		return true
	}
	return false
}

// Level is the alert style of a message.
type Level string

const (
	Info    Level = "info"
	Warning Level = "warning"
	Good    Level = "success"
	Danger  Level = "danger"
)

// Fixed message texts.
const (
	TextScanning = "Scanning..."
	TextNotReady = "Start the camera first."
	TextNoMatch  = "No match found. Please try again."
	TextPresent  = "Marked PRESENT"
	TextOutside  = "Scanned outside attendance window"
	textUnknown  = "Unknown"
)

// Outcome is one message for the result area.
type Outcome struct {
	Kind  Kind
	Level Level
	// Text is the plain message.
	Text string
	// HTML is the sanitized alert markup for the page.
	HTML string
	// Match is set for Success.
	Match *recognize.Match
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b")
	p.AllowAttrs("class").
		Matching(regexp.MustCompile(`^alert alert-(info|warning|success|danger)$`)).
		OnElements("div")
	return p
}

func alert(level Level, inner string) string {
	return policy.Sanitize(fmt.Sprintf(`<div class="alert alert-%s">%s</div>`, level, inner))
}

func plain(kind Kind, level Level, text string) Outcome {
	return Outcome{Kind: kind, Level: level, Text: text, HTML: alert(level, html.EscapeString(text))}
}

// Scan is shown while a recognition request is in flight.
func Scan() Outcome { return plain(Scanning, Info, TextScanning) }

// FrameNotReady is shown when Snap runs before the camera has a frame.
func FrameNotReady() Outcome { return plain(NotReady, Warning, TextNotReady) }

// CameraFailed reports a failure to start the camera.
func CameraFailed(err error) Outcome {
	return plain(CameraError, Danger, "Camera error: "+describe(err))
}

// RequestError reports a failure to send the frame or read the reply.
func RequestError(err error) Outcome {
	return plain(RequestFailed, Danger, "Request failed: "+describe(err))
}

// Classify maps a recognition response to exactly one terminal outcome.
func Classify(resp *recognize.Response) Outcome {
	switch {
	case resp == nil:
		return RequestError(apperrors.New(apperrors.Decode, "empty response"))
	case !resp.OK:
		msg := resp.Error
		if msg == "" {
			msg = textUnknown
		}
		return plain(ServerError, Danger, "Error: "+msg)
	case resp.Match == nil:
		return plain(NoMatch, Warning, TextNoMatch)
	}

	m := resp.Match
	status := TextOutside
	if resp.WithinWindow {
		status = TextPresent
	}
	who := m.Role
	if m.ClassName != "" {
		who += ", " + m.ClassName
	}
	text := fmt.Sprintf("%s (%s) — %s", m.Name, who, status)
	markup := fmt.Sprintf("<b>%s</b> (%s) — %s", html.EscapeString(m.Name), html.EscapeString(who), status)

	return Outcome{Kind: Success, Level: Good, Text: text, HTML: alert(Good, markup), Match: m}
}

// describe returns an error's user-facing description.
func describe(err error) string {
	if err == nil {
		return textUnknown
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Description()
	}
	return err.Error()
}
