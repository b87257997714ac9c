package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// NewTemplate parses every embedded email template once. Each file defines "subject" and
// "plainBody" and may define "htmlBody".
func NewTemplate() *Template {
	tp := &Template{
		text: make(map[string]*template.Template),
		html: make(map[string]*htmltemplate.Template),
	}

	names, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		panic(err)
	}

	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")

		t := template.Must(template.New(name).ParseFS(templateFS, path))
		tp.text[name] = t

		if t.Lookup("htmlBody") != nil {
			tp.html[name] = htmltemplate.Must(htmltemplate.New(name).ParseFS(templateFS, path))
		}
	}

	return tp
}

// ParseTemplate renders the subject, plain body and optional HTML body of the named template.
// Subject and plain body are rendered as text, the HTML body is escaped.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, ok := tp.text[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown email template %q", name)
	}

	subject := new(bytes.Buffer)
	if err := t.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, nil, nil, err
	}
	trimmed := strings.TrimSpace(subject.String())
	subject.Reset()
	subject.WriteString(trimmed)

	plainBody := new(bytes.Buffer)
	if err := t.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, nil, nil, err
	}

	htmlBody := new(bytes.Buffer)
	if ht, ok := tp.html[name]; ok {
		if err := ht.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
			return nil, nil, nil, err
		}
	}

	return subject, plainBody, htmlBody, nil
}
