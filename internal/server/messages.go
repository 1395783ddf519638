package server

// Message carries only the type for dispatch.
type Message struct {
	Type string `json:"type"`
}

// ActionMessage is sent by the page: "start", "snap" or "stop".
type ActionMessage struct {
	Type    string `json:"type"`
	TraceID string `json:"trace_id,omitempty"`
}

// ResultMessage replaces the page's result area.
type ResultMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
	Level string `json:"level"`
	HTML  string `json:"html"`
	Text  string `json:"text"`
}

// PreviewMessage carries one live preview frame.
type PreviewMessage struct {
	Type    string `json:"type"`
	JPEGB64 string `json:"jpeg_b64"`
}

// StatusMessage reports camera state changes.
type StatusMessage struct {
	Type      string `json:"type"`
	Streaming bool   `json:"streaming"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ErrorMessage reports a rejected action to the connection that sent it.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionResponse is the JSON body of the camera endpoints.
type ActionResponse struct {
	OK      bool   `json:"ok"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}
