package indexspec

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"2,4-6,9", []int{2, 4, 5, 6, 9}},
		{"1-1", []int{1}},
		{"3,1,3", []int{3, 1, 3}},
		{" 7 , 2-3 ", []int{7, 2, 3}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"x", "", "1,,2", "3-1", "0", "1-", "-2", "a-b", "1-2-3"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrParse), in)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), in)
	}
}

func TestParseCapsExpansion(t *testing.T) {
	_, err := Parse("1-2000000000")
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "positions")

	got, err := Parse(fmt.Sprintf("1-%d", MaxPositions))
	require.NoError(t, err)
	assert.Len(t, got, MaxPositions)

	_, err = Parse(fmt.Sprintf("1-%d,1", MaxPositions))
	require.ErrorIs(t, err, ErrParse)
}

func TestZeroBased(t *testing.T) {
	assert.Nil(t, ZeroBased(nil))
	assert.Equal(t, []int{1, 0, 4}, ZeroBased([]int{2, 1, 5}))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("1.5:3")
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 1.5, Max: 3}, r)
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(3.5))

	r, err = ParseRange(":10")
	require.NoError(t, err)
	assert.True(t, math.IsInf(r.Min, -1))
	assert.Equal(t, 10.0, r.Max)

	for _, in := range []string{"5", "a:1", "1:b", "4:2"} {
		_, err := ParseRange(in)
		assert.ErrorIs(t, err, ErrParse, in)
	}
}
