package lingo

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// ViewRenderer renders named views.
type ViewRenderer interface {
	Has(name string) bool
	Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) error
}

// TemplateRenderer renders html/template views loaded from a file system. A file
// errors/404.html is the view "errors.404".
type TemplateRenderer struct {
	templates *template.Template
}

const viewExtension = ".html"

// NewTemplateRenderer parses every .html file of fsys.
func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	root := template.New("")
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != viewExtension {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(strings.TrimSuffix(p, viewExtension), "/", ".")
		if _, err = root.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("view %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: root}, nil
}

func (t *TemplateRenderer) Has(name string) bool {
	return name != "" && t.templates.Lookup(name) != nil
}

// Render executes the view into a buffer first, so a failing template leaves the
// response untouched.
func (t *TemplateRenderer) Render(w http.ResponseWriter, _ *http.Request, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("view %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
