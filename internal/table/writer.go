package table

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Writer emits rows as delimiter-joined lines. Callers must Flush.
type Writer struct {
	bw    *bufio.Writer
	delim string
}

// NewWriter returns a Writer joining fields with delim (TAB when empty).
func NewWriter(w io.Writer, delim string) *Writer {
	if delim == "" {
		delim = "\t"
	}
	return &Writer{bw: bufio.NewWriter(w), delim: delim}
}

// Write writes one row.
func (w *Writer) Write(fields []string) error {
	if _, err := w.bw.WriteString(strings.Join(fields, w.delim)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
