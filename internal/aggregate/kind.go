// Package aggregate implements the statistical reducers and the two ways of
// applying them to table streams: collapsing each stream to one row (column
// mode) or combining corresponding rows of several streams (multiple mode).
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/swissknife/internal/table"
)

// Kind selects an aggregator.
type Kind int

const (
	Mean Kind = iota
	Median
	MeanSD
	MeanErr
	Mean95CI
	Min
	Max
	Sum
	First
	Last
)

// z975x2 is twice the two-sided 97.5th percentile of the standard normal.
const z975x2 = 3.919927969

// ErrUnknownFunction is returned by ParseKind for names not in the table.
var ErrUnknownFunction = errors.New("unknown aggregation function")

type kindInfo struct {
	name string
	// suffixes name the outputs of multi-valued aggregators; "" keeps the
	// column name as is.
	suffixes []string
	// float renders integral results with a fractional part ("2.0").
	float bool
	fn       func(xs []float64) []Result
}

var kinds = [...]kindInfo{
	Mean:     {name: "mean", float: true, fn: func(xs []float64) []Result { return []Result{valid(mean(xs))} }},
	Median:   {name: "median", float: true, fn: func(xs []float64) []Result { return []Result{median(xs)} }},
	MeanSD:   {name: "mean_sd", suffixes: []string{"", "sd"}, float: true, fn: meanSD},
	MeanErr:  {name: "mean_err", suffixes: []string{"", "err"}, float: true, fn: meanErr},
	Mean95CI: {name: "mean_95ci", suffixes: []string{"", "95ci"}, float: true, fn: mean95CI},
	Min:      {name: "min", fn: pick(slices.Min[[]float64])},
	Max:      {name: "max", fn: pick(slices.Max[[]float64])},
	Sum:      {name: "sum", fn: func(xs []float64) []Result { return []Result{valid(sum(xs))} }},
	First:    {name: "first", fn: pick(func(xs []float64) float64 { return xs[0] })},
	Last:     {name: "last", fn: pick(func(xs []float64) float64 { return xs[len(xs)-1] })},
}

// Result is one aggregator output. OK is false when the aggregator has no
// value for its input (for example the median of nothing).
type Result struct {
	F  float64
	OK bool
}

func valid(f float64) Result { return Result{F: f, OK: true} }

// ParseKind resolves an aggregator by name.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, info := range kinds {
		if info.name == n {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (use one of %s)", ErrUnknownFunction, name, strings.Join(Names(), ", "))
}

// Names lists the aggregator names in sorted order.
func Names() []string {
	out := make([]string, 0, len(kinds))
	for _, info := range kinds {
		out = append(out, info.name)
	}
	sort.Strings(out)
	return out
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kinds) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// Suffixes returns the output suffixes of a multi-valued aggregator, or nil.
func (k Kind) Suffixes() []string { return kinds[k].suffixes }

// Arity is the number of values the aggregator produces per column.
func (k Kind) Arity() int {
	if n := len(kinds[k].suffixes); n > 0 {
		return n
	}
	return 1
}

// Apply runs the aggregator over xs. The result always has Arity entries.
func Apply(k Kind, xs []float64) []Result { return kinds[k].fn(xs) }

// ExpandHeaders derives output column names: each header becomes one name
// per suffix ("x", "x_sd") for multi-valued aggregators.
func ExpandHeaders(k Kind, headers []string) []string {
	sfx := kinds[k].suffixes
	if len(sfx) == 0 {
		return headers
	}
	out := make([]string, 0, len(headers)*len(sfx))
	for _, h := range headers {
		for _, s := range sfx {
			if s == "" {
				out = append(out, h)
			} else {
				out = append(out, h+"_"+s)
			}
		}
	}
	return out
}

// Format renders a result. Absent results are empty fields.
func Format(k Kind, r Result) string {
	if r.OK && kinds[k].float && r.F == math.Trunc(r.F) && math.Abs(r.F) < 1e16 {
		return strconv.FormatFloat(r.F, 'f', 1, 64)
	}
	return table.FormatValue(table.Value{F: r.F, Valid: r.OK})
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}

// sampleSD uses the N-1 divisor and is 0 below two values.
func sampleSD(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

func meanSD(xs []float64) []Result {
	m := mean(xs)
	return []Result{valid(m), valid(sampleSD(xs, m))}
}

func stdErr(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return sampleSD(xs, m) / math.Sqrt(float64(len(xs)))
}

func meanErr(xs []float64) []Result {
	m := mean(xs)
	return []Result{valid(m), valid(stdErr(xs, m))}
}

func mean95CI(xs []float64) []Result {
	m := mean(xs)
	return []Result{valid(m), valid(stdErr(xs, m) * z975x2)}
}

func median(xs []float64) Result {
	n := len(xs)
	if n == 0 {
		return Result{}
	}
	cp := make([]float64, n)
	copy(cp, xs)
	sort.Float64s(cp)
	mid := n / 2
	if n%2 == 0 {
		return valid((cp[mid-1] + cp[mid]) / 2)
	}
	return valid(cp[mid])
}

// pick wraps reductions that have no value for empty input.
func pick(fn func(xs []float64) float64) func([]float64) []Result {
	return func(xs []float64) []Result {
		if len(xs) == 0 {
			return []Result{{}}
		}
		return []Result{valid(fn(xs))}
	}
}
