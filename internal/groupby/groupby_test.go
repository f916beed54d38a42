package groupby

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/swissknife/internal/table"
)

func TestGrouperKeepsOrderAndDuplicates(t *testing.T) {
	g := New(false)
	for _, r := range [][]string{{"a", "1"}, {"b", "3"}, {"a", "2"}, {"a", "1"}, nil} {
		g.Add(r)
	}
	assert.Equal(t, [][]string{{"a", "1", "2", "1"}, {"b", "3"}}, g.Rows())
	assert.Equal(t, 2, g.Len())
}

func TestGrouperUnique(t *testing.T) {
	g := New(true)
	for _, r := range [][]string{{"k", "x", "x"}, {"j"}, {"k", "y", "x"}} {
		g.Add(r)
	}
	assert.Equal(t, [][]string{{"k", "x", "y"}, {"j"}}, g.Rows())
}

type mapOpener map[string]string

func (m mapOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func TestRun(t *testing.T) {
	files := mapOpener{"in": "a\t1\na\t2\nb\t3\n"}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), files, Config{}, []string{"in"}, &out, nil))
	assert.Equal(t, "a\t1\t2\nb\t3\n", out.String())
}

func TestRunHeaderIsGroupedAndFieldsSelectKey(t *testing.T) {
	files := mapOpener{"in": "name,team,score\nann,red,3\nbob,blue,4\ncid,red,3\n"}
	cfg := Config{
		Splitter:        table.Splitter{Delimiter: ",", Fields: []int{1, 2}},
		Unique:          true,
		OutputDelimiter: " ",
	}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), files, cfg, []string{"in"}, &out, nil))
	assert.Equal(t, "team score\nred 3\nblue 4\n", out.String())
}

func TestRunShortRowDoesNotShiftKey(t *testing.T) {
	files := mapOpener{"in": "a,x,1\nk\nb,y,1\n"}
	cfg := Config{
		Splitter:        table.Splitter{Delimiter: ",", Fields: []int{2, 0}},
		OutputDelimiter: ",",
	}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), files, cfg, []string{"in"}, &out, nil))
	assert.Equal(t, "1,a,b\n,k\n", out.String())
}

func TestRunFilesAreIndependent(t *testing.T) {
	files := mapOpener{"x": "k\t1\n", "y": "k\t2\n"}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), files, Config{}, []string{"x", "y"}, &out, nil))
	assert.Equal(t, "k\t1\nk\t2\n", out.String())
}

func TestRunMissingInput(t *testing.T) {
	err := Run(context.Background(), mapOpener{}, Config{}, []string{"nope"}, io.Discard, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGroup(t *testing.T) {
	rows := [][]string{{"x", "1", "2"}, {"y"}, {"x", "3"}}
	assert.Equal(t, [][]string{{"x", "1", "2", "3"}, {"y"}}, Group(rows, false))
	assert.Empty(t, Group(nil, true))
}
