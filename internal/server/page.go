package server

import (
	"embed"
	"html/template"
)

//go:embed static/index.html
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(staticFS, "static/index.html"))

// pageData fills the kiosk page banner.
type pageData struct {
	Window   string
	Timezone string
}
