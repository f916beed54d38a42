package source

import (
	"bufio"
	"fmt"
	"io"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 16 << 20

// Lines is a forward-only line iterator over a reader. Line terminators are
// removed; a trailing line without a newline is still returned.
type Lines struct {
	sc  *bufio.Scanner
	err error
}

// NewLines wraps r.
func NewLines(r io.Reader) *Lines {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	return &Lines{sc: sc}
}

// Next returns the next line, or false at end of input or on error.
func (l *Lines) Next() (string, bool) {
	if l.err != nil {
		return "", false
	}
	if l.sc.Scan() {
		return l.sc.Text(), true
	}
	if err := l.sc.Err(); err != nil {
		l.err = fmt.Errorf("read line: %w", err)
	}
	return "", false
}

// Err returns the first read error, if any.
func (l *Lines) Err() error { return l.err }
