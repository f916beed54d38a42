package remap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/swissknife/internal/source"
	"github.com/KaramelBytes/swissknife/internal/table"
)

// Opener opens named inputs.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Config controls a Remapper.
type Config struct {
	Delimiter string
	// Fields are the 1-based positions to remap; empty remaps every field.
	Fields []int
}

// Remapper rewrites rows through a Mapper.
type Remapper struct {
	mapper Mapper
	cfg    Config
	fields map[int]bool
	log    *slog.Logger
}

// NewRemapper returns a Remapper. A nil logger uses slog.Default().
func NewRemapper(mapper Mapper, cfg Config, logger *slog.Logger) *Remapper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = "\t"
	}
	r := &Remapper{mapper: mapper, cfg: cfg, log: logger}
	if len(cfg.Fields) > 0 {
		r.fields = make(map[int]bool, len(cfg.Fields))
		for _, f := range cfg.Fields {
			r.fields[f] = true
		}
	}
	return r
}

// Row remaps one row. It returns false when the row must be dropped.
func (r *Remapper) Row(parts []string) ([]string, bool, error) {
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if r.fields != nil && !r.fields[i+1] {
			out = append(out, part)
			continue
		}
		v, err := r.mapper.Map(part)
		switch {
		case err == nil:
			out = append(out, v)
		case errors.Is(err, ErrSkipField):
		case errors.Is(err, ErrSkipRow):
			return nil, false, nil
		default:
			return nil, false, err
		}
	}
	return out, true, nil
}

// Run remaps every input in turn and writes the result to out. No names
// means standard input.
func (r *Remapper) Run(ctx context.Context, opener Opener, names []string, out io.Writer) (err error) {
	if len(names) == 0 {
		names = []string{source.Stdin}
	}
	w := table.NewWriter(out, r.cfg.Delimiter)
	defer func() {
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
	}()
	for _, name := range names {
		if err := r.stream(ctx, opener, name, w); err != nil {
			return err
		}
	}
	return nil
}

func (r *Remapper) stream(ctx context.Context, opener Opener, name string, w *table.Writer) error {
	rc, err := opener.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	sp := table.Splitter{Delimiter: r.cfg.Delimiter, Strip: true}
	lines := source.NewLines(rc)
	n, skipped := 0, 0
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		n++
		row, keep, err := r.Row(sp.Split(line))
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, n, err)
		}
		if !keep {
			skipped++
			continue
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	if err := lines.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	r.log.Debug("stream remapped", "name", name, "rows", n, "skipped", skipped)
	return nil
}
