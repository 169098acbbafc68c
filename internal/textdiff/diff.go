// Package textdiff 行级文本差异（LCS），用于渲染存档快照之间的变更记录。
//
// 对比为 O(n·m) 时间与内存（n、m 为行数）。DiffLines 本身不做大小限制，
// 调用方应先用 CheckLimit 限制输入行数（默认 DefaultMaxLines），
// 并发场景再用 CheckCells 限制单次 LCS 表大小（默认 DefaultMaxCells）。
package textdiff

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxLines 单侧行数上限（10000×10000 的 int32 表约 400MB）
const DefaultMaxLines = 10000

// DefaultMaxCells 单次 LCS 表格数上限（int32，约 100MB）
const DefaultMaxCells = 25_000_000

// ErrTooManyLines 输入超过行数上限
var ErrTooManyLines = errors.New("too many lines to diff")

// LineType 差异行类型
type LineType string

const (
	LineAdded   LineType = "added"
	LineRemoved LineType = "removed"
	LineSame    LineType = "same"
)

// DiffLine 差异结果中的一行（Content 不含换行符）
type DiffLine struct {
	Type    LineType `json:"type"`
	Content string   `json:"content"`
}

// Stats 差异统计
type Stats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// SplitLines 按 "\n" 切分；末尾换行不产生空行，空串返回空切片
// "\r" 等其它字符原样保留。
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// CheckLimit 任一侧超过 maxLines 时返回 ErrTooManyLines（maxLines <= 0 表示不限制）
func CheckLimit(oldText, newText string, maxLines int) error {
	if maxLines <= 0 {
		return nil
	}
	oldCount, newCount := countLines(oldText), countLines(newText)
	if oldCount > maxLines || newCount > maxLines {
		return fmt.Errorf("%w: old=%d new=%d max=%d", ErrTooManyLines, oldCount, newCount, maxLines)
	}
	return nil
}

// CheckCells 去掉公共前缀后 LCS 表超过 maxCells 格时返回 ErrTooManyLines（maxCells <= 0 表示不限制）
func CheckCells(oldText, newText string, maxCells int) error {
	if maxCells <= 0 {
		return nil
	}
	a, b := trimCommonPrefix(SplitLines(oldText), SplitLines(newText))
	cells := int64(len(a)+1) * int64(len(b)+1)
	if len(a) > 0 && len(b) > 0 && cells > int64(maxCells) {
		return fmt.Errorf("%w: table=%dx%d max_cells=%d", ErrTooManyLines, len(a), len(b), maxCells)
	}
	return nil
}

// DiffLines 计算 oldText -> newText 的行级差异
//
// 输出按文档顺序排列：依次回放 removed+same 得到旧文本的行，added+same 得到新文本的行。
// 存在多个最短编辑脚本时，同一位置的 removed 总排在 added 之前。
func DiffLines(oldText, newText string) []DiffLine {
	a := SplitLines(oldText)
	b := SplitLines(newText)
	result := make([]DiffLine, 0, len(a)+len(b))

	// 公共前缀直接输出，缩小 LCS 表
	ta, tb := trimCommonPrefix(a, b)
	for _, line := range a[:len(a)-len(ta)] {
		result = append(result, DiffLine{Type: LineSame, Content: line})
	}
	a, b = ta, tb

	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return appendTail(result, a, b)
	}

	// lcs[i*w+j] = LCS(a[i:], b[j:])
	w := m + 1
	lcs := make([]int32, (n+1)*w)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i*w+j] = lcs[(i+1)*w+j+1] + 1
			} else if down, right := lcs[(i+1)*w+j], lcs[i*w+j+1]; down >= right {
				lcs[i*w+j] = down
			} else {
				lcs[i*w+j] = right
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			result = append(result, DiffLine{Type: LineSame, Content: a[i]})
			i++
			j++
		case lcs[(i+1)*w+j] >= lcs[i*w+j+1]:
			// 平局时先删后增
			result = append(result, DiffLine{Type: LineRemoved, Content: a[i]})
			i++
		default:
			result = append(result, DiffLine{Type: LineAdded, Content: b[j]})
			j++
		}
	}

	return appendTail(result, a[i:], b[j:])
}

// DiffStats 按类型计数
func DiffStats(lines []DiffLine) Stats {
	var s Stats
	for _, l := range lines {
		switch l.Type {
		case LineAdded:
			s.Added++
		case LineRemoved:
			s.Removed++
		case LineSame:
			s.Unchanged++
		}
	}
	return s
}

// OldLines 回放 removed+same
func OldLines(lines []DiffLine) []string {
	return replay(lines, LineRemoved)
}

// NewLines 回放 added+same
func NewLines(lines []DiffLine) []string {
	return replay(lines, LineAdded)
}

func replay(lines []DiffLine, side LineType) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Type == LineSame || l.Type == side {
			out = append(out, l.Content)
		}
	}
	return out
}

func trimCommonPrefix(a, b []string) ([]string, []string) {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	return a[prefix:], b[prefix:]
}

func appendTail(result []DiffLine, removed, added []string) []DiffLine {
	for _, line := range removed {
		result = append(result, DiffLine{Type: LineRemoved, Content: line})
	}
	for _, line := range added {
		result = append(result, DiffLine{Type: LineAdded, Content: line})
	}
	return result
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	count := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		count++
	}
	return count
}
