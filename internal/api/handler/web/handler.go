// internal/api/handler/web/handler.go
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
)

//go:embed templates/*
var templateFS embed.FS

// pages lists the page templates (excluding layout.html)
var pages = []string{"chart.html"}

// PageOptions are rendered into the page as client settings.
type PageOptions struct {
	OverlayEnabled bool
	MaxUploadBytes int64
	OHLCVFile      string
	TradesFile     string
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds separate template instances for each page
	// Each instance contains layout.html + the specific page template
	pageTemplates map[string]*template.Template
	opts          PageOptions
}

// NewHandler creates a new web handler with templates loaded from the given directory.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string, opts PageOptions) (*Handler, error) {
	if templatesDir != "" {
		return newHandler(func(page string) (*template.Template, error) {
			// Parse layout first, then the page template
			return template.ParseFiles(
				filepath.Join(templatesDir, "layout.html"),
				filepath.Join(templatesDir, page),
			)
		}, opts)
	}
	return NewHandlerWithFS(TemplateFS(), opts)
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
// This is useful for testing or custom template sources.
func NewHandlerWithFS(fsys fs.FS, opts PageOptions) (*Handler, error) {
	return newHandler(func(page string) (*template.Template, error) {
		return template.ParseFS(fsys, "layout.html", page)
	}, opts)
}

func newHandler(parse func(page string) (*template.Template, error), opts PageOptions) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl, err := parse(page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}
	return &Handler{pageTemplates: pageTemplates, opts: opts}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
