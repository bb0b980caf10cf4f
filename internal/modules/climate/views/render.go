package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var welcomeTmpl *template.Template

// loadTemplatesFromFS parses the templates under dir in fsys. Tests use it
// to simulate broken template sets.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	welcomeTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// RouteLink is one entry in the welcome page route index.
type RouteLink struct {
	Path        string
	Description string
}

type WelcomeData struct {
	Title  string
	Routes []RouteLink
}

func RenderWelcome(w io.Writer, data *WelcomeData) error {
	if welcomeTmpl == nil {
		return errors.New("welcome template not loaded: call views.LoadTemplates during startup")
	}
	return welcomeTmpl.ExecuteTemplate(w, "welcome.html", data)
}
