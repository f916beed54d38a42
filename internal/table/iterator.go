package table

// LineSource yields raw lines in input order. It is read once.
type LineSource interface {
	Next() (string, bool)
	Err() error
}

// Options configures an Iterator.
type Options struct {
	Splitter
	Converter
	// Every keeps only every Nth data row (the 0th, Nth, 2Nth, ...).
	// Values below 1 keep all rows.
	Every int
}

// Iterator reads a LineSource and emits typed data rows. The first row
// that has a non-numeric cell before any data row is captured as the header.
// Once data has started, the iterator never goes back to header detection.
type Iterator struct {
	lines LineSource
	opts  Options

	seenHeader bool
	headers    []string
	lineNumber int
}

// NewIterator wraps lines.
func NewIterator(lines LineSource, opts Options) *Iterator {
	if opts.Every < 1 {
		opts.Every = 1
	}
	return &Iterator{lines: lines, opts: opts}
}

// Next returns the next kept data row.
func (it *Iterator) Next() (Row, bool) {
	for {
		line, ok := it.lines.Next()
		if !ok {
			return Row{}, false
		}
		cells := it.opts.Split(line)
		if len(cells) == 0 {
			continue
		}
		vals, numeric := it.opts.Convert(cells)
		if !it.seenHeader {
			it.seenHeader = true
			if !numeric {
				it.headers = cells
				continue
			}
		}
		n := it.lineNumber
		it.lineNumber++
		if n%it.opts.Every != 0 {
			continue
		}
		return Row{Raw: cells, Values: vals}, true
	}
}

// Headers returns the captured header row, or nil when the stream had none.
func (it *Iterator) Headers() []string { return it.headers }

// SeenHeader reports whether header detection is over.
func (it *Iterator) SeenHeader() bool { return it.seenHeader }

// Err returns the read error of the underlying LineSource.
func (it *Iterator) Err() error { return it.lines.Err() }

// SliceLines is an in-memory LineSource.
type SliceLines struct {
	lines []string
	pos   int
}

// NewSliceLines returns a LineSource over lines.
func NewSliceLines(lines ...string) *SliceLines {
	return &SliceLines{lines: lines}
}

func (s *SliceLines) Next() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	s.pos++
	return s.lines[s.pos-1], true
}

func (s *SliceLines) Err() error { return nil }
