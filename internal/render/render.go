// Package render turns domain objects into terminal output. It follows one
// rule everywhere: structured formats (json, yaml, template) are faithful
// dumps for scripting, tables are lossy human views with truncation and
// short IDs.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"deckhand/internal/task"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatWide     Format = "wide"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTemplate Format = "template"
)

// ParseFormat converts a user-supplied string into a Format. The empty
// string parses to FormatTable.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatWide:
		return FormatWide, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatTemplate:
		return FormatTemplate, nil
	default:
		return FormatTable, fmt.Errorf("unknown output format %q (valid: table, wide, json, yaml, template)", s)
	}
}

// Renderer writes formatted output to a single destination.
type Renderer struct {
	out   io.Writer
	color bool
}

// New creates a Renderer writing to out. Color applies to table headers and
// notices only; structured output is never colored.
func New(out io.Writer, color bool) *Renderer {
	return &Renderer{out: out, color: color}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	fmt.Fprintln(r.out, string(data))
	return nil
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	fmt.Fprint(r.out, string(data))
	return nil
}

// Template renders data through a user-supplied text/template with the
// sprig function set available.
func (r *Renderer) Template(tmplText string, data any) error {
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(tmplText)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	if err := tmpl.Execute(r.out, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	fmt.Fprintln(r.out)
	return nil
}

// Tasks dispatches a task collection to the requested format. Template
// output goes through Template directly since it needs the template text.
func (r *Renderer) Tasks(format Format, tasks []task.Task) error {
	switch format {
	case FormatJSON:
		return r.JSON(tasks)
	case FormatYAML:
		return r.YAML(tasks)
	case FormatWide:
		r.TaskTable(tasks, true)
		return nil
	case FormatTable:
		r.TaskTable(tasks, false)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
