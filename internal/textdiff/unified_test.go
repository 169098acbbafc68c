package textdiff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileDiff_SingleHunk(t *testing.T) {
	lines := DiffLines("a\nb\nc\n", "a\nx\nc\n")
	fd := BuildFileDiff("old", "new", lines, DefaultContextLines)

	require.Len(t, fd.Hunks, 1)
	h := fd.Hunks[0]
	assert.Equal(t, int32(1), h.OrigStartLine)
	assert.Equal(t, int32(3), h.OrigLines)
	assert.Equal(t, int32(1), h.NewStartLine)
	assert.Equal(t, int32(3), h.NewLines)
	assert.Equal(t, " a\n-b\n+x\n c\n", string(h.Body))
}

func TestBuildFileDiff_SplitsDistantChanges(t *testing.T) {
	oldLines := make([]string, 20)
	for i := range oldLines {
		oldLines[i] = string(rune('a' + i))
	}
	newLines := append([]string(nil), oldLines...)
	newLines[1] = "X"
	newLines[18] = "Y"

	lines := DiffLines(strings.Join(oldLines, "\n"), strings.Join(newLines, "\n"))
	fd := BuildFileDiff("old", "new", lines, 2)

	require.Len(t, fd.Hunks, 2)
	assert.Equal(t, int32(1), fd.Hunks[0].OrigStartLine)
	assert.Equal(t, int32(4), fd.Hunks[0].OrigLines)
	assert.Equal(t, int32(17), fd.Hunks[1].OrigStartLine)
	assert.Equal(t, int32(4), fd.Hunks[1].OrigLines)
}

func TestBuildFileDiff_PureAddition(t *testing.T) {
	fd := BuildFileDiff("old", "new", DiffLines("", "a\nb"), 3)
	require.Len(t, fd.Hunks, 1)
	assert.Equal(t, int32(0), fd.Hunks[0].OrigStartLine)
	assert.Equal(t, int32(0), fd.Hunks[0].OrigLines)
	assert.Equal(t, int32(1), fd.Hunks[0].NewStartLine)
	assert.Equal(t, int32(2), fd.Hunks[0].NewLines)
}

func TestUnified(t *testing.T) {
	out, err := Unified("snapshot-1", "snapshot-2", DiffLines("a\nb\nc\n", "a\nx\nc\n"), 3)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "--- snapshot-1")
	assert.Contains(t, text, "+++ snapshot-2")
	assert.Contains(t, text, "@@ -1,3 +1,3 @@")
	assert.Contains(t, text, "-b\n")
	assert.Contains(t, text, "+x\n")
}

func TestUnified_NoChanges(t *testing.T) {
	out, err := Unified("a", "b", DiffLines("same\n", "same\n"), 3)
	require.NoError(t, err)
	assert.Empty(t, out)
}
