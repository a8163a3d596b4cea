// Package prompt holds the fixed prompt templates and renders them with
// per-call variables.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrTemplate marks a template that fails to parse or references a variable
// that was not supplied.
var ErrTemplate = errors.New("prompt: template error")

// Vars maps placeholder names to values.
type Vars map[string]any

// Template is a parsed, immutable prompt template.
type Template struct {
	name string
	tmpl *template.Template
}

// New parses text as a Go text/template. Placeholders are written {{.Name}}.
func New(name, text string) (*Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrTemplate, name, err)
	}
	return &Template{name: name, tmpl: t}, nil
}

// MustNew is New that panics on error. Used for the package-level templates.
func MustNew(name, text string) *Template {
	t, err := New(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template's name.
func (t *Template) Name() string { return t.name }

// Render fills t with vars.
func Render(t *Template, vars Vars) (string, error) {
	if t == nil || t.tmpl == nil {
		return "", fmt.Errorf("%w: nil template", ErrTemplate)
	}
	if vars == nil {
		vars = Vars{}
	}
	var b strings.Builder
	if err := t.tmpl.Execute(&b, map[string]any(vars)); err != nil {
		return "", fmt.Errorf("%w: render %s: %w", ErrTemplate, t.name, err)
	}
	return b.String(), nil
}
