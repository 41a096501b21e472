package diff

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDiffLines(t *testing.T) {
	before := "alpha\nbeta\ngamma\n"
	after := "alpha\nBETA\ngamma\n"
	hunks := TextDiff(before, after)
	require.Len(t, hunks, 1)

	var removed, added []Line
	for _, line := range hunks[0].Lines {
		switch line.Kind {
		case LineRemoved:
			removed = append(removed, line)
		case LineAdded:
			added = append(added, line)
		}
	}
	require.Len(t, removed, 1)
	require.Len(t, added, 1)
	assert.Equal(t, "beta", removed[0].Text)
	assert.Equal(t, 2, removed[0].OldLine)
	assert.Equal(t, "BETA", added[0].Text)
	assert.Equal(t, 2, added[0].NewLine)

	r, a := Changed(hunks)
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, a)
}

func TestTextDiffGroupsHunks(t *testing.T) {
	before := "1\n2\n3\n4\n5\n"
	after := "1\nTWO\n3\n4\nFIVE\nsix\n"
	hunks := TextDiff(before, after)
	require.Len(t, hunks, 2)

	assert.Equal(t, []Line{
		{Kind: LineRemoved, Text: "2", OldLine: 2},
		{Kind: LineAdded, Text: "TWO", NewLine: 2},
	}, hunks[0].Lines)

	r, a := Changed(hunks[1:])
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, a)
	assert.Equal(t, 5, hunks[1].Lines[0].OldLine)
}

func TestNoChanges(t *testing.T) {
	hunks := TextDiff("same\n", "same\n")
	assert.Empty(t, hunks)
	r, a := Changed(hunks)
	assert.Zero(t, r)
	assert.Zero(t, a)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, hunks, false))
	assert.Empty(t, buf.String())
}

func TestRender(t *testing.T) {
	hunks := TextDiff("a\r\nb\r\n", "a\r\nc\r\n")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, hunks, false))
	assert.Equal(t, "-     2  b\n+     2  c\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, hunks, true))
	out := buf.String()
	assert.Contains(t, out, "\033[")
	assert.Contains(t, out, "b")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestTextDiffWithLimit(t *testing.T) {
	_, truncated := TextDiffWithLimit("a\nb\n", "a\nc\n", 3)
	assert.True(t, truncated)

	hunks, truncated := TextDiffWithLimit("a\nb\n", "a\nc\n", 0)
	assert.False(t, truncated)
	assert.NotEmpty(t, hunks)
}
