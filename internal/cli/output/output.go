// Package output renders 5gctl command results as tables, JSON, or YAML.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how command results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps the -o flag value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes command results in one configured format. Status
// messages (Success, Error, Warning) are colored when enabled.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// Format returns the configured output format.
func (p *Printer) Format() Format {
	return p.format
}

// Print renders data in the configured format. Table output requires
// the data to implement TableRenderer; anything else falls back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return renderTable(p.out, renderer)
		}
		return renderJSON(p.out, data)
	case FormatJSON:
		return renderJSON(p.out, data)
	case FormatYAML:
		return renderYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Println writes a plain line regardless of format.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Success prints a green status line.
func (p *Printer) Success(msg string) {
	p.status("\033[32m", msg)
}

// Error prints a red status line.
func (p *Printer) Error(msg string) {
	p.status("\033[31m", msg)
}

// Warning prints a yellow status line.
func (p *Printer) Warning(msg string) {
	p.status("\033[33m", msg)
}

func (p *Printer) status(colorCode, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "%s%s\033[0m\n", colorCode, msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
