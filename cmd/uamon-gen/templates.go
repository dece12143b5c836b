package main

import (
	"fmt"
	"strings"
	"text/template"
)

// funcMap exposes the formatting helpers the templates use.
var funcMap = template.FuncMap{
	"quote":   func(s string) string { return fmt.Sprintf("%q", s) },
	"hexCode": func(v uint32) string { return fmt.Sprintf("0x%08X", v) },
}

// templates is the parsed template set.
var templates = template.Must(template.New("").Funcs(funcMap).Parse(statusCodesTmpl))

// renderTemplate runs one named template into the builder, panicking on
// template bugs.
func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

// --- Template data types ---

// statusCodesData holds pre-computed data for the status codes template.
type statusCodesData struct {
	Source string
	Codes  []statusCodeData
}

type statusCodeData struct {
	// Ident is the Go identifier ("BadSessionIDInvalid").
	Ident string

	// Name is the canonical protocol spelling ("BadSessionIdInvalid").
	Name string

	Code        uint32
	Description string
}

// --- Templates ---

const statusCodesTmpl = `{{define "statusCodes"}}// Code generated by uamon-gen from {{.Source}}; DO NOT EDIT.

package ua

// Named status codes for the session, subscription, monitored-item and
// method service sets.
const (
{{- range .Codes}}
// {{.Ident}}: {{.Description}}
{{.Ident}} StatusCode = {{hexCode .Code}}
{{- end}}
)

// statusCodeNames maps codes to their canonical protocol names.
var statusCodeNames = map[StatusCode]string{
{{- range .Codes}}
{{.Ident}}: {{quote .Name}},
{{- end}}
}

// statusCodeDescriptions maps codes to short human-readable descriptions.
var statusCodeDescriptions = map[StatusCode]string{
{{- range .Codes}}
{{.Ident}}: {{quote .Description}},
{{- end}}
}
{{end}}`
