package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/swissknife/internal/source"
	"github.com/KaramelBytes/swissknife/internal/table"
)

// Mode selects how streams are combined.
type Mode int

const (
	// ModeMultiple reduces the i-th rows of all streams into output row i.
	ModeMultiple Mode = iota
	// ModeColumn collapses every stream into a single output row.
	ModeColumn
)

func (m Mode) String() string {
	if m == ModeColumn {
		return "column"
	}
	return "multiple"
}

// ParseMode resolves "column" or "multiple".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiple", "":
		return ModeMultiple, nil
	case "column":
		return ModeColumn, nil
	}
	return 0, fmt.Errorf("invalid mode: %s (use column or multiple)", s)
}

// Opener opens named inputs; *source.Opener satisfies it.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Config controls an Engine.
type Config struct {
	Splitter        table.Splitter
	Function        Kind
	OutputDelimiter string
}

// Engine writes aggregated rows to an io.Writer.
type Engine struct {
	opener Opener
	cfg    Config
	out    io.Writer
	log    *slog.Logger
}

// NewEngine returns an Engine. A nil logger uses slog.Default().
func NewEngine(opener Opener, cfg Config, out io.Writer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OutputDelimiter == "" {
		cfg.OutputDelimiter = "\t"
	}
	return &Engine{opener: opener, cfg: cfg, out: out, log: logger.With("function", cfg.Function.String())}
}

// Run processes names in the given mode.
func (e *Engine) Run(ctx context.Context, mode Mode, names []string) error {
	if len(names) == 0 {
		return errors.New("at least one input file must be given")
	}
	if mode == ModeColumn {
		return e.Column(ctx, names)
	}
	return e.Multiple(ctx, names)
}

// Column processes the streams one after the other and writes one row per
// stream. Only the first stream's header is written.
func (e *Engine) Column(ctx context.Context, names []string) (err error) {
	w := table.NewWriter(e.out, e.cfg.OutputDelimiter)
	defer func() {
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
	}()
	for i, name := range names {
		if err := e.columnStream(ctx, name, i == 0, w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) columnStream(ctx context.Context, name string, first bool, w *table.Writer) error {
	rc, err := e.opener.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	e.log.Debug("stream opened", "mode", ModeColumn.String(), "name", name)

	it := table.NewIterator(source.NewLines(rc), table.Options{Splitter: e.cfg.Splitter})
	headerDone := !first
	writeHeader := func() error {
		if headerDone || it.Headers() == nil {
			return nil
		}
		headerDone = true
		e.log.Debug("header detected", "name", name, "columns", len(it.Headers()))
		return w.Write(ExpandHeaders(e.cfg.Function, it.Headers()))
	}

	var acc columnAccumulator
	for {
		row, more := it.Next()
		if err := writeHeader(); err != nil {
			return err
		}
		if !more {
			break
		}
		acc.add(row.Values)
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	out := make([]string, 0, len(acc.cols)*e.cfg.Function.Arity())
	for _, col := range acc.cols {
		for _, r := range Apply(e.cfg.Function, col) {
			out = append(out, Format(e.cfg.Function, r))
		}
	}
	e.log.Debug("stream aggregated", "name", name, "rows", acc.rows, "columns", len(acc.cols))
	return w.Write(out)
}

// columnAccumulator keeps one value sequence per column. A column that first
// appears after some rows have been read is back-filled with one zero per
// earlier row. Rows that are shorter than the widest row so far contribute
// nothing to the columns they lack, and missing cells are skipped.
type columnAccumulator struct {
	cols [][]float64
	rows int
}

func (a *columnAccumulator) add(vals []table.Value) {
	for len(a.cols) < len(vals) {
		a.cols = append(a.cols, make([]float64, a.rows))
	}
	for j, v := range vals {
		if v.Valid {
			a.cols[j] = append(a.cols[j], v.F)
		}
	}
	a.rows++
}

// Multiple reads all streams in lock-step and writes one row per round of
// lines. It stops silently when the shortest stream ends.
func (e *Engine) Multiple(ctx context.Context, names []string) (err error) {
	lines := make([]*source.Lines, 0, len(names))
	closers := make([]io.Closer, 0, len(names))
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	for _, name := range names {
		rc, err := e.opener.Open(ctx, name)
		if err != nil {
			return err
		}
		closers = append(closers, rc)
		lines = append(lines, source.NewLines(rc))
		e.log.Debug("stream opened", "mode", ModeMultiple.String(), "name", name)
	}

	w := table.NewWriter(e.out, e.cfg.OutputDelimiter)
	defer func() {
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
	}()

	var conv table.Converter
	dataStarted := false
	rows := make([][]string, len(lines))
	typed := make([][]table.Value, len(lines))
	for round := 0; ; round++ {
		for i, l := range lines {
			line, more := l.Next()
			if !more {
				if err := l.Err(); err != nil {
					return fmt.Errorf("%s: %w", names[i], err)
				}
				e.log.Debug("shortest stream exhausted", "name", names[i], "rounds", round)
				return nil
			}
			rows[i] = e.cfg.Splitter.Split(line)
		}
		if allEmpty(rows) {
			continue
		}

		header := false
		for i, r := range rows {
			vals, numeric := conv.Convert(r)
			typed[i] = vals
			if !numeric {
				header = true
			}
		}
		if !dataStarted {
			dataStarted = true
			if header {
				hdr := firstNonEmpty(rows)
				e.log.Debug("header detected", "columns", len(hdr))
				if err := w.Write(ExpandHeaders(e.cfg.Function, hdr)); err != nil {
					return err
				}
				continue
			}
		}

		width := len(typed[0])
		for _, t := range typed[1:] {
			width = min(width, len(t))
		}
		out := make([]string, 0, width*e.cfg.Function.Arity())
		xs := make([]float64, 0, len(typed))
		for j := 0; j < width; j++ {
			xs = xs[:0]
			for _, t := range typed {
				if t[j].Valid {
					xs = append(xs, t[j].F)
				}
			}
			for _, r := range Apply(e.cfg.Function, xs) {
				out = append(out, Format(e.cfg.Function, r))
			}
		}
		if err := w.Write(out); err != nil {
			return err
		}
	}
}

// firstNonEmpty returns the first row that has cells. Header text comes from
// the first stream unless its line in the header round was blank.
func firstNonEmpty(rows [][]string) []string {
	for _, r := range rows {
		if len(r) > 0 {
			return r
		}
	}
	return nil
}

func allEmpty(rows [][]string) bool {
	for _, r := range rows {
		if len(r) > 0 {
			return false
		}
	}
	return true
}
