package render

import (
	"bytes"
	"fmt"
	"text/template"
)

// funcs are the value encoders available to every template.
//
//nolint:gochecknoglobals // Read-only function table.
var funcs = template.FuncMap{
	"py":       Python,
	"pylist":   PythonList,
	"cmake":    CMake,
	"cmakeset": CMakeSet,
}

// Template is a parsed configuration template.
type Template struct {
	name string
	tmpl *template.Template
}

// Parse parses text into a Template. Unknown placeholders fail at execution time.
func Parse(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	return &Template{
		name: name,
		tmpl: tmpl,
	}, nil
}

// MustParse is like Parse but panics on error. It is meant for embedded templates.
func MustParse(name, text string) *Template {
	t, err := Parse(name, text)
	if err != nil {
		panic(err)
	}

	return t
}

// Execute renders a tagged struct record.
func (t *Template) Execute(record any, remap map[string]string) (string, error) {
	fields, err := FieldsOf(record)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", t.name, err)
	}

	return t.ExecuteFields(fields, remap)
}

// ExecuteFields renders a list of fields.
func (t *Template) ExecuteFields(fields []Field, remap map[string]string) (string, error) {
	var buf bytes.Buffer

	if err := t.tmpl.Execute(&buf, Flatten(fields, remap)); err != nil {
		return "", fmt.Errorf("render %s: %w", t.name, err)
	}

	return buf.String(), nil
}

// Render parses text and renders record into it in one step.
func Render(name, text string, record any, remap map[string]string) (string, error) {
	t, err := Parse(name, text)
	if err != nil {
		return "", err
	}

	return t.Execute(record, remap)
}
