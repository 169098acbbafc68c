package textdiff

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{""}, SplitLines("\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
	assert.Equal(t, []string{"a\r", "b\r"}, SplitLines("a\r\nb\r\n"))
}

func TestDiffLines_Basic(t *testing.T) {
	got := DiffLines("a\nb\nc\n", "a\nx\nc\n")
	want := []DiffLine{
		{Type: LineSame, Content: "a"},
		{Type: LineRemoved, Content: "b"},
		{Type: LineAdded, Content: "x"},
		{Type: LineSame, Content: "c"},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("DiffLines mismatch (-want +got):\n%s", d)
	}
}

func TestDiffLines_RemovedBeforeAdded(t *testing.T) {
	got := DiffLines("one\ntwo\n", "three\nfour\n")
	want := []DiffLine{
		{Type: LineRemoved, Content: "one"},
		{Type: LineRemoved, Content: "two"},
		{Type: LineAdded, Content: "three"},
		{Type: LineAdded, Content: "four"},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("tie-break mismatch (-want +got):\n%s", d)
	}

	// 交换顺序的情况
	got = DiffLines("x\ny", "y\nx")
	want = []DiffLine{
		{Type: LineRemoved, Content: "x"},
		{Type: LineSame, Content: "y"},
		{Type: LineAdded, Content: "x"},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("swap mismatch (-want +got):\n%s", d)
	}
}

func TestDiffLines_EmptyInputs(t *testing.T) {
	assert.Empty(t, DiffLines("", ""))

	got := DiffLines("", "a\nb")
	assert.Equal(t, []DiffLine{{LineAdded, "a"}, {LineAdded, "b"}}, got)

	got = DiffLines("a\nb", "")
	assert.Equal(t, []DiffLine{{LineRemoved, "a"}, {LineRemoved, "b"}}, got)
}

func TestDiffLines_CaseAndWhitespaceSensitive(t *testing.T) {
	got := DiffLines("Hello\nworld ", "hello\nworld")
	stats := DiffStats(got)
	assert.Equal(t, Stats{Added: 2, Removed: 2, Unchanged: 0}, stats)
}

func TestDiffLines_OddContent(t *testing.T) {
	oldText := "nul\x00byte\n\xff\xfe invalid\n" + strings.Repeat("long", 50000)
	newText := "nul\x00byte\n" + strings.Repeat("long", 50000) + "\nextra"

	lines := DiffLines(oldText, newText)
	assert.Equal(t, SplitLines(oldText), OldLines(lines))
	assert.Equal(t, SplitLines(newText), NewLines(lines))
}

func TestDiffLines_Identity(t *testing.T) {
	inputs := []string{"", "a", "a\n", "a\nb\na\nb\n", "\n\n\n", "# Title\n\nbody\n"}
	for _, in := range inputs {
		lines := DiffLines(in, in)
		for _, l := range lines {
			assert.Equal(t, LineSame, l.Type)
		}
		stats := DiffStats(lines)
		assert.Zero(t, stats.Added)
		assert.Zero(t, stats.Removed)
		assert.Equal(t, len(SplitLines(in)), stats.Unchanged)
	}
}

func TestDiffLines_RoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []string{"a", "b", "c", "d", ""}

	randomDoc := func() string {
		n := rng.Intn(12)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = alphabet[rng.Intn(len(alphabet))]
		}
		doc := strings.Join(parts, "\n")
		if rng.Intn(2) == 0 && doc != "" {
			doc += "\n"
		}
		return doc
	}

	for iter := 0; iter < 500; iter++ {
		oldText, newText := randomDoc(), randomDoc()
		lines := DiffLines(oldText, newText)

		require.Equal(t, SplitLines(oldText), OldLines(lines), "old=%q new=%q", oldText, newText)
		require.Equal(t, SplitLines(newText), NewLines(lines), "old=%q new=%q", oldText, newText)

		stats := DiffStats(lines)
		require.Equal(t, len(lines), stats.Added+stats.Removed+stats.Unchanged)

		// same 行数等于 LCS 长度
		require.Equal(t, lcsLength(SplitLines(oldText), SplitLines(newText)), stats.Unchanged)
	}
}

func TestDiffStats(t *testing.T) {
	lines := []DiffLine{
		{LineSame, "a"}, {LineRemoved, "b"}, {LineAdded, "c"}, {LineAdded, "d"},
	}
	assert.Equal(t, Stats{Added: 2, Removed: 1, Unchanged: 1}, DiffStats(lines))
	assert.Equal(t, Stats{}, DiffStats(nil))
}

func TestCheckLimit(t *testing.T) {
	assert.NoError(t, CheckLimit("a\nb\n", "a", 2))
	assert.NoError(t, CheckLimit("a\nb\nc", "a", 0))

	err := CheckLimit("a\nb\nc", "a", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyLines))
}

func TestCheckCells(t *testing.T) {
	// 3x3 行 -> (3+1)*(3+1) = 16 格
	assert.NoError(t, CheckCells("a\nb\nc\n", "x\ny\nz\n", 16))
	err := CheckCells("a\nb\nc\n", "x\ny\nz\n", 15)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyLines))

	// 公共前缀不计入
	assert.NoError(t, CheckCells("p\np\np\na\n", "p\np\np\nb\n", 4))

	// 相同文本或一侧为空不建表
	big := strings.Repeat("line\n", 5000)
	assert.NoError(t, CheckCells(big, big, 10))
	assert.NoError(t, CheckCells(big, "", 10))

	assert.NoError(t, CheckCells(big, strings.Repeat("other\n", 5000), 0))
}

// 朴素 LCS 长度（对照）
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev = cur
	}
	return prev[len(b)]
}
