// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses and executes the HTML templates.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/session"
)

const baseLayout = "layouts/base.html"

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	markdown       goldmark.Markdown
	sanitizer      *bluemonday.Policy
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		markdown:       goldmark.New(),
		sanitizer:      bluemonday.UGCPolicy(),
		now:            time.Now,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page under pages/ and admin/ together with
// the base layout and the partials. Pages are named "<dir>/<file>" without
// the extension, e.g. "pages/catalogo".
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, dir := range []string{"pages", "admin"} {
		pages, err := fs.Glob(templatesFS, dir+"/*.html")
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}
		for _, tmplPath := range pages {
			name := strings.TrimSuffix(tmplPath, path.Ext(tmplPath))

			files := append([]string{baseLayout}, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	if len(r.templates) == 0 {
		return fmt.Errorf("no templates found")
	}
	return nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	User        *model.SessionUser
	CurrentPath string
	CurrentYear int
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code. The session
// user and any pending flash message are added to data.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	data.CurrentPath = req.URL.Path
	if u, ok := middleware.GetUser(req); ok {
		data.User = &u
	}
	if r.sessionManager != nil && data.Flash == "" {
		data.Flash = session.PopFlash(req.Context(), r.sessionManager)
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash stores a message shown on the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message string) {
	if r.sessionManager != nil {
		session.SetFlash(req.Context(), r.sessionManager, message)
	}
}

// Markdown converts Markdown to sanitized HTML.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())) // #nosec G203 -- sanitized by bluemonday
}
