// Package table turns line streams into typed rows: it splits lines on a
// delimiter, projects selected columns and separates an optional header
// row from numeric data.
package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a numeric cell. Valid is false when the cell could not be
// converted, which marks it as missing.
type Value struct {
	F     float64
	Valid bool
}

// Row is one data row in both its raw and its typed form.
type Row struct {
	Raw    []string
	Values []Value
}

// Floats returns the valid values of the row in order.
func (r Row) Floats() []float64 {
	out := make([]float64, 0, len(r.Values))
	for _, v := range r.Values {
		if v.Valid {
			out = append(out, v.F)
		}
	}
	return out
}

// LenientFloat converts s to a float; malformed input yields an invalid Value
// instead of an error.
func LenientFloat(s string) Value {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Value{}
	}
	return Value{F: f, Valid: true}
}

// Splitter splits raw lines into cells and projects the selected columns.
type Splitter struct {
	// Delimiter separates fields; empty means TAB.
	Delimiter string
	// Strip removes all surrounding ASCII whitespace instead of only line
	// terminators.
	Strip bool
	// Fields are 0-based positions to keep, in output order. Nil keeps all.
	Fields []int
}

// Split returns the projected cells of line. Blank lines yield nil.
// Selected positions beyond the end of the line yield empty cells so that
// later selections keep their place; a line holding none of the selected
// positions yields nil.
func (s Splitter) Split(line string) []string {
	cut := "\r\n"
	if s.Strip {
		cut = " \t\r\n"
	}
	line = strings.Trim(line, cut)
	if line == "" {
		return nil
	}
	delim := s.Delimiter
	if delim == "" {
		delim = "\t"
	}
	parts := strings.Split(line, delim)
	if s.Fields == nil {
		return parts
	}
	out := make([]string, len(s.Fields))
	hit := false
	for i, idx := range s.Fields {
		if idx >= 0 && idx < len(parts) {
			out[i] = parts[idx]
			hit = true
		}
	}
	if !hit {
		return nil
	}
	return out
}

// Converter types raw cells.
type Converter struct {
	// FirstColumnIsDate parses the first cell with DateLayout and exempts it
	// from header detection.
	FirstColumnIsDate bool
	DateLayout        string
}

// Convert types cells and reports whether every non-exempt cell is numeric.
func (c Converter) Convert(cells []string) ([]Value, bool) {
	vals := make([]Value, len(cells))
	numeric := true
	for i, cell := range cells {
		if i == 0 && c.FirstColumnIsDate {
			vals[i] = parseDate(cell, c.DateLayout)
			continue
		}
		vals[i] = LenientFloat(cell)
		if !vals[i].Valid {
			numeric = false
		}
	}
	return vals, numeric
}

// DefaultDateLayout is used when no date layout is configured.
const DefaultDateLayout = "2006-01-02"

// parseDate converts a date cell to Unix seconds.
func parseDate(s, layout string) Value {
	if layout == "" {
		layout = DefaultDateLayout
	}
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return Value{}
	}
	return Value{F: float64(t.Unix()), Valid: true}
}

var strftime = strings.NewReplacer(
	"%Y", "2006", "%y", "06", "%m", "01", "%d", "02", "%H", "15",
	"%I", "03", "%M", "04", "%S", "05", "%p", "PM", "%b", "Jan",
	"%B", "January", "%a", "Mon", "%A", "Monday", "%j", "002",
	"%z", "-0700", "%Z", "MST", "%%", "%",
)

// DateLayout accepts either a Go reference layout or a strftime-style
// format ("%Y-%m-%d") and returns a Go layout.
func DateLayout(format string) string {
	if format == "" {
		return DefaultDateLayout
	}
	if !strings.Contains(format, "%") {
		return format
	}
	return strftime.Replace(format)
}

// FormatValue renders a value in its shortest form; invalid values are empty.
func FormatValue(v Value) string {
	if !v.Valid {
		return ""
	}
	switch {
	case math.IsNaN(v.F):
		return "nan"
	case math.IsInf(v.F, 1):
		return "inf"
	case math.IsInf(v.F, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v.F, 'g', -1, 64)
}
