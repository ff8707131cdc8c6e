package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// Template names rendered by the auth pages.
const (
	TemplateSignup  = "signup.html"
	TemplateLogin   = "login.html"
	TemplateHome    = "home.html"
	TemplateWelcome = "welcome.html"
)

// PageData is the view model shared by all auth pages.
type PageData struct {
	Title     string
	StudentID string
	// Error is shown above the form when validation fails.
	Error    string
	Username string
	Email    string
}

// Renderer writes a named template as the response.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data PageData) error
}

// TemplateRenderer renders html/template pages wrapped in layout.html.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses every page under templates/ in fsys.
func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	funcs := template.FuncMap{"url": URLFor}

	pages := make(map[string]*template.Template)
	for _, name := range []string{TemplateSignup, TemplateLogin, TemplateHome, TemplateWelcome} {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return &TemplateRenderer{pages: pages}, nil
}

// Render executes the page into a buffer first so that a template error
// never leaves a half-written response.
func (tr *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data PageData) error {
	t, ok := tr.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
