// Package render turns page templates into HTTP responses.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/gatehouse/gatehouse/internal/session"
)

const layoutFile = "layout.html"

// PageData is the view model every page template receives.
type PageData struct {
	Title     string
	Username  string
	CSRFToken string
	Flashes   []session.Flash
}

// Renderer executes pre-parsed page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses templates/*.html from fsys. Each page is paired with its own
// copy of the layout so pages can each define "content".
func New(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	layout, err := template.ParseFS(fsys, path.Join("templates", layoutFile))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		if name == layoutFile {
			continue
		}
		page, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := page.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = page
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes the named page with status. The page is rendered into a
// buffer first; on failure the client gets a bare 500 instead of half a page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	page, ok := r.pages[name]
	if !ok {
		err := fmt.Errorf("unknown template %q", name)
		r.fail(w, name, err)
		return err
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.fail(w, name, err)
		return fmt.Errorf("execute %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) fail(w http.ResponseWriter, name string, err error) {
	r.logger.Error("template render failed",
		"template", name,
		"error", err,
	)
	http.Error(w, "Failed to render page", http.StatusInternalServerError)
}
