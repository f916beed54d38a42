// Package indexspec parses the column selector grammar shared by the tools
// ("2,4-6,9") and the MIN:MAX range syntax.
package indexspec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse is the sentinel wrapped by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports a malformed index or range specification.
type ParseError struct {
	Input  string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token != "" && e.Token != e.Input {
		return fmt.Sprintf("invalid specification %q: token %q: %s", e.Input, e.Token, e.Reason)
	}
	return fmt.Sprintf("invalid specification %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// MaxPositions bounds the number of positions one specification may expand to.
const MaxPositions = 1 << 16

// Parse expands an index specification into 1-based column positions in the
// order given. Ranges are inclusive and expand ascending; duplicates are kept.
func Parse(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, &ParseError{Input: spec, Reason: "empty specification"}
	}
	var out []int
	for _, part := range strings.Split(spec, ",") {
		tok := strings.TrimSpace(part)
		if tok == "" {
			return nil, &ParseError{Input: spec, Token: part, Reason: "empty token"}
		}
		lo, hi, isRange := strings.Cut(tok, "-")
		if !isRange {
			n, err := position(tok)
			if err != nil {
				return nil, &ParseError{Input: spec, Token: tok, Reason: err.Error()}
			}
			if len(out) >= MaxPositions {
				return nil, tooMany(spec, tok)
			}
			out = append(out, n)
			continue
		}
		a, err := position(strings.TrimSpace(lo))
		if err != nil {
			return nil, &ParseError{Input: spec, Token: tok, Reason: "range start: " + err.Error()}
		}
		b, err := position(strings.TrimSpace(hi))
		if err != nil {
			return nil, &ParseError{Input: spec, Token: tok, Reason: "range end: " + err.Error()}
		}
		if a > b {
			return nil, &ParseError{Input: spec, Token: tok, Reason: "range start is greater than range end"}
		}
		if b-a >= MaxPositions-len(out) {
			return nil, tooMany(spec, tok)
		}
		for i := a; i <= b; i++ {
			out = append(out, i)
		}
	}
	return out, nil
}

func tooMany(spec, tok string) *ParseError {
	return &ParseError{Input: spec, Token: tok, Reason: fmt.Sprintf("more than %d positions", MaxPositions)}
}

func position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	if n < 1 {
		return 0, errors.New("column positions start at 1")
	}
	return n, nil
}

// ZeroBased converts 1-based positions to 0-based slice indices.
func ZeroBased(fields []int) []int {
	if len(fields) == 0 {
		return nil
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		out[i] = f - 1
	}
	return out
}

// Range is a closed numeric interval; an unbounded side is ±Inf.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether x lies inside the range.
func (r Range) Contains(x float64) bool { return x >= r.Min && x <= r.Max }

// ParseRange parses "MIN:MAX". Either side may be left empty to leave that
// end unbounded.
func ParseRange(spec string) (Range, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok {
		return Range{}, &ParseError{Input: spec, Reason: "expected MIN:MAX"}
	}
	r := Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if s := strings.TrimSpace(lo); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, &ParseError{Input: spec, Token: s, Reason: "minimum is not a number"}
		}
		r.Min = v
	}
	if s := strings.TrimSpace(hi); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, &ParseError{Input: spec, Token: s, Reason: "maximum is not a number"}
		}
		r.Max = v
	}
	if r.Min > r.Max {
		return Range{}, &ParseError{Input: spec, Reason: "minimum is greater than maximum"}
	}
	return r, nil
}
