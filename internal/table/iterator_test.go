package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(it *Iterator) []Row {
	var rows []Row
	for {
		r, ok := it.Next()
		if !ok {
			return rows
		}
		rows = append(rows, r)
	}
}

func v(f float64) Value { return Value{F: f, Valid: true} }

func TestIteratorDetectsHeader(t *testing.T) {
	it := NewIterator(NewSliceLines("name\tvalue", "a\t1", "b\t2"), Options{})
	rows := collect(it)
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"name", "value"}, it.Headers())
	require.Len(t, rows, 2)
	assert.Equal(t, []Value{{}, v(1)}, rows[0].Values)
	assert.Equal(t, []string{"b", "2"}, rows[1].Raw)
}

func TestIteratorWithoutHeader(t *testing.T) {
	it := NewIterator(NewSliceLines("1\t2", "x\t3"), Options{})
	rows := collect(it)
	assert.Nil(t, it.Headers())
	assert.True(t, it.SeenHeader())
	require.Len(t, rows, 2)
	assert.Equal(t, []Value{v(1), v(2)}, rows[0].Values)
	// header detection is over; a textual row later on is data with a missing cell
	assert.Equal(t, []Value{{}, v(3)}, rows[1].Values)
}

func TestIteratorSkipsBlankLinesBeforeHeader(t *testing.T) {
	it := NewIterator(NewSliceLines("", "\r", "h1\th2", "", "4\t5"), Options{})
	rows := collect(it)
	assert.Equal(t, []string{"h1", "h2"}, it.Headers())
	require.Len(t, rows, 1)
	assert.Equal(t, []float64{4, 5}, rows[0].Floats())
}

func TestIteratorFieldsAndStrip(t *testing.T) {
	opts := Options{Splitter: Splitter{Delimiter: ",", Strip: true, Fields: []int{2, 0}}}
	it := NewIterator(NewSliceLines("  a,b,c  ", " 1,2,3\t"), opts)
	rows := collect(it)
	assert.Equal(t, []string{"c", "a"}, it.Headers())
	require.Len(t, rows, 1)
	assert.Equal(t, []float64{3, 1}, rows[0].Floats())
}

func TestSplitKeepsPlaceOfShortSelections(t *testing.T) {
	s := Splitter{Delimiter: ",", Fields: []int{2, 0}}
	assert.Equal(t, []string{"", "k"}, s.Split("k"))
	assert.Equal(t, []string{"c", "a"}, s.Split("a,b,c"))
	assert.Nil(t, Splitter{Delimiter: ",", Fields: []int{3, 4}}.Split("a,b"))
}

func TestIteratorShortRowMasksMissingSelection(t *testing.T) {
	opts := Options{Splitter: Splitter{Delimiter: ",", Fields: []int{1, 0}}}
	rows := collect(NewIterator(NewSliceLines("1,10", "2", "3,30"), opts))
	require.Len(t, rows, 3)
	assert.Equal(t, []Value{{}, {F: 2, Valid: true}}, rows[1].Values)
}

func TestIteratorStripOnlyLineTerminators(t *testing.T) {
	s := Splitter{}
	assert.Equal(t, []string{"", "1", " 2"}, s.Split("\t1\t 2\r\n"))
	s.Strip = true
	assert.Equal(t, []string{"1", " 2"}, s.Split("\t1\t 2\r\n"))
}

func TestIteratorEvery(t *testing.T) {
	it := NewIterator(NewSliceLines("x", "0", "1", "2", "3", "4", "5", "6"), Options{Every: 3})
	var got []float64
	for _, r := range collect(it) {
		got = append(got, r.Values[0].F)
	}
	assert.Equal(t, []float64{0, 3, 6}, got)
	assert.Equal(t, []string{"x"}, it.Headers())
}

func TestIteratorEveryWithoutHeaderCountsFirstRow(t *testing.T) {
	it := NewIterator(NewSliceLines("10", "11", "12"), Options{Every: 2})
	rows := collect(it)
	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[0].Values[0].F)
	assert.Equal(t, 12.0, rows[1].Values[0].F)
}

func TestIteratorDateColumnIsExempt(t *testing.T) {
	opts := Options{Converter: Converter{FirstColumnIsDate: true, DateLayout: DateLayout("%Y-%m-%d")}}
	it := NewIterator(NewSliceLines("2024-01-02\t5", "2024-01-03\t6"), opts)
	rows := collect(it)
	assert.Nil(t, it.Headers())
	require.Len(t, rows, 2)
	want := float64(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix())
	assert.Equal(t, []Value{v(want), v(5)}, rows[0].Values)

	it = NewIterator(NewSliceLines("day\tcount", "2024-01-02\t5"), opts)
	rows = collect(it)
	assert.Equal(t, []string{"day", "count"}, it.Headers())
	assert.Len(t, rows, 1)
}

func TestLenientFloat(t *testing.T) {
	assert.Equal(t, v(1.5), LenientFloat(" 1.5 "))
	assert.Equal(t, v(-2e3), LenientFloat("-2e3"))
	assert.False(t, LenientFloat("abc").Valid)
	assert.False(t, LenientFloat("").Valid)
}

func TestDateLayout(t *testing.T) {
	assert.Equal(t, DefaultDateLayout, DateLayout(""))
	assert.Equal(t, "2006-01-02 15:04:05", DateLayout("%Y-%m-%d %H:%M:%S"))
	assert.Equal(t, "02/01/2006", DateLayout("02/01/2006"))
}
