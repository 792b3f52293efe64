package web

import "embed"

// templateFS holds the embedded HTML page templates.
//
//go:embed templates/*.html
var templateFS embed.FS
