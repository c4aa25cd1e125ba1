package email

import (
	"bytes"
	"embed"
	"html/template"

	"hrms/internal/platform/apperr"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplatePayrollPaid  = "payroll_paid"
	TemplateNotification = "notification"
	TemplateWelcome      = "welcome"
)

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template (file name without .html).
func (r *Renderer) Render(name string, vars map[string]any) (string, error) {
	t := r.tmpl.Lookup(name + ".html")
	if t == nil {
		return "", apperr.Newf(apperr.KindNotFound, "email template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
