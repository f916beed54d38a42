// Package groupby collects the values of raw rows under the value of their
// first field.
package groupby

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/swissknife/internal/source"
	"github.com/KaramelBytes/swissknife/internal/table"
)

// Grouper accumulates rows. Keys are reported in the order they were first
// seen. With Unique set, repeated values under a key are kept once.
type Grouper struct {
	unique bool
	keys   []string
	values map[string][]string
	seen   map[string]map[string]struct{}
}

// New returns an empty Grouper.
func New(unique bool) *Grouper {
	g := &Grouper{unique: unique, values: make(map[string][]string)}
	if unique {
		g.seen = make(map[string]map[string]struct{})
	}
	return g
}

// Add files row[1:] under row[0]. Empty rows are ignored.
func (g *Grouper) Add(row []string) {
	if len(row) == 0 {
		return
	}
	key := row[0]
	vals, ok := g.values[key]
	if !ok {
		g.keys = append(g.keys, key)
		if g.unique {
			g.seen[key] = make(map[string]struct{})
		}
	}
	for _, v := range row[1:] {
		if g.unique {
			if _, dup := g.seen[key][v]; dup {
				continue
			}
			g.seen[key][v] = struct{}{}
		}
		vals = append(vals, v)
	}
	g.values[key] = vals
}

// Len is the number of distinct keys.
func (g *Grouper) Len() int { return len(g.keys) }

// Rows returns one row per key: the key followed by its values.
func (g *Grouper) Rows() [][]string {
	out := make([][]string, 0, len(g.keys))
	for _, k := range g.keys {
		row := make([]string, 0, 1+len(g.values[k]))
		row = append(row, k)
		row = append(row, g.values[k]...)
		out = append(out, row)
	}
	return out
}

// Group groups rows in memory.
func Group(rows [][]string, unique bool) [][]string {
	g := New(unique)
	for _, r := range rows {
		g.Add(r)
	}
	return g.Rows()
}

// Opener opens named inputs.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Config controls Run.
type Config struct {
	Splitter        table.Splitter
	Unique          bool
	OutputDelimiter string
}

// Run groups every input independently and writes its groups to out.
// Header lines get no special treatment: they are grouped like data.
func Run(ctx context.Context, opener Opener, cfg Config, names []string, out io.Writer, logger *slog.Logger) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(names) == 0 {
		names = []string{source.Stdin}
	}
	w := table.NewWriter(out, cfg.OutputDelimiter)
	defer func() {
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
	}()
	for _, name := range names {
		g, err := groupStream(ctx, opener, cfg, name)
		if err != nil {
			return err
		}
		logger.Debug("stream grouped", "name", name, "keys", g.Len(), "unique", cfg.Unique)
		for _, row := range g.Rows() {
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func groupStream(ctx context.Context, opener Opener, cfg Config, name string) (*Grouper, error) {
	rc, err := opener.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	g := New(cfg.Unique)
	lines := source.NewLines(rc)
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		g.Add(cfg.Splitter.Split(line))
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}
