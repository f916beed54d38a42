// Package remap replaces identifiers in selected fields of delimited rows
// using a mapping table or a template expression.
package remap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"

	"github.com/KaramelBytes/swissknife/internal/source"
	"github.com/KaramelBytes/swissknife/internal/table"
)

// Policy decides what happens to keys missing from the mapping.
type Policy int

const (
	// Lenient keeps the key unchanged.
	Lenient Policy = iota
	// Warn keeps the key unchanged and logs a warning.
	Warn
	// FailStrict aborts with an UnknownKeyError.
	FailStrict
	// SkipRow drops the whole row.
	SkipRow
	// SkipColumn drops the field from the row.
	SkipColumn
)

var policyNames = map[string]Policy{
	"ignore": Lenient,
	"warn":   Warn,
	"fail":   FailStrict,
	"skip":   SkipRow,
	"empty":  SkipColumn,
}

// ParsePolicy resolves the --missing option values.
func ParsePolicy(s string) (Policy, error) {
	p, ok := policyNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid missing action: %s (use ignore, warn, skip, empty or fail)", s)
	}
	return p, nil
}

func (p Policy) String() string {
	for name, v := range policyNames {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

var (
	// ErrUnknownKey is wrapped by UnknownKeyError.
	ErrUnknownKey = errors.New("unknown key")
	// ErrSkipRow asks the caller to drop the current row.
	ErrSkipRow = errors.New("skip row")
	// ErrSkipField asks the caller to drop the current field.
	ErrSkipField = errors.New("skip field")
)

// UnknownKeyError reports a key missing from a strict mapping.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string { return "unknown ID in input file: " + e.Key }

func (e *UnknownKeyError) Unwrap() error { return ErrUnknownKey }

// Mapper translates one field value.
type Mapper interface {
	Map(key string) (string, error)
}

// Lookup is a mapping table with a fixed missing-key policy.
type Lookup struct {
	mapping map[string]string
	policy  Policy
	log     *slog.Logger
}

// NewLookup returns a Lookup. A nil logger uses slog.Default().
func NewLookup(mapping map[string]string, policy Policy, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookup{mapping: mapping, policy: policy, log: logger}
}

// Map returns the mapped value of key, or applies the policy on a miss.
func (l *Lookup) Map(key string) (string, error) {
	if v, ok := l.mapping[key]; ok {
		return v, nil
	}
	switch l.policy {
	case Warn:
		l.log.Warn("key not found in mapping", "key", key)
		return key, nil
	case FailStrict:
		return "", &UnknownKeyError{Key: key}
	case SkipRow:
		return "", ErrSkipRow
	case SkipColumn:
		return "", ErrSkipField
	default:
		return key, nil
	}
}

// Len is the number of entries in the mapping.
func (l *Lookup) Len() int { return len(l.mapping) }

// LoadMapping reads old→new pairs from the 1-based columns oldCol and newCol.
// Rows too short to hold both columns are ignored; later rows win.
func LoadMapping(r io.Reader, delimiter string, oldCol, newCol int) (map[string]string, error) {
	if oldCol < 1 || newCol < 1 {
		return nil, fmt.Errorf("mapping columns must be positive, got %d,%d", oldCol, newCol)
	}
	sp := table.Splitter{Delimiter: delimiter, Strip: true}
	m := make(map[string]string)
	lines := source.NewLines(r)
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		parts := sp.Split(line)
		if len(parts) < oldCol || len(parts) < newCol {
			continue
		}
		m[parts[oldCol-1]] = parts[newCol-1]
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	return m, nil
}

// TemplateMapper computes new values with a text/template in which .x is
// the old value, e.g. `{{printf "id_%s" .x}}`.
type TemplateMapper struct {
	tmpl *template.Template
}

// NewTemplateMapper parses expr.
func NewTemplateMapper(expr string) (*TemplateMapper, error) {
	t, err := template.New("mapping").Option("missingkey=error").Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse mapping expression: %w", err)
	}
	return &TemplateMapper{tmpl: t}, nil
}

// Map evaluates the template for key.
func (m *TemplateMapper) Map(key string) (string, error) {
	var b strings.Builder
	if err := m.tmpl.Execute(&b, map[string]string{"x": key}); err != nil {
		return "", fmt.Errorf("evaluate mapping expression: %w", err)
	}
	return b.String(), nil
}
