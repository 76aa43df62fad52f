// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

// TemplateFiles holds the page templates under templates/.
//
//go:embed templates/*.html
var TemplateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// StaticFS returns the assets served under /static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}
