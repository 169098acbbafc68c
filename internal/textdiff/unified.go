package textdiff

import (
	"bytes"
	"fmt"

	"github.com/sourcegraph/go-diff/diff"
)

// DefaultContextLines unified 输出的默认上下文行数
const DefaultContextLines = 3

// BuildFileDiff 把 DiffLines 结果分组为 hunk（context 为每个变更前后保留的相同行数）
// 没有变更时返回的 FileDiff 不含 hunk。
func BuildFileDiff(oldName, newName string, lines []DiffLine, context int) *diff.FileDiff {
	if context < 0 {
		context = 0
	}
	fd := &diff.FileDiff{
		OrigName: oldName,
		NewName:  newName,
		Hunks:    []*diff.Hunk{},
	}

	// 每行之前已出现的旧/新行数
	oldBefore := make([]int, len(lines)+1)
	newBefore := make([]int, len(lines)+1)
	for k, l := range lines {
		oldBefore[k+1], newBefore[k+1] = oldBefore[k], newBefore[k]
		if l.Type != LineAdded {
			oldBefore[k+1]++
		}
		if l.Type != LineRemoved {
			newBefore[k+1]++
		}
	}

	k := 0
	for k < len(lines) {
		if lines[k].Type == LineSame {
			k++
			continue
		}

		start := max(k-context, 0)
		end := k // 最后一个变更行
		for next := k + 1; next < len(lines); next++ {
			if lines[next].Type == LineSame {
				continue
			}
			// 两个变更之间的相同行不超过 2*context 时合并到同一个 hunk
			if next-end-1 > 2*context {
				break
			}
			end = next
		}
		stop := min(end+context, len(lines)-1)

		fd.Hunks = append(fd.Hunks, buildHunk(lines[start:stop+1], oldBefore[start], newBefore[start]))
		k = stop + 1
	}

	return fd
}

// Unified 渲染 unified diff 文本（无变更时返回空）
func Unified(oldName, newName string, lines []DiffLine, context int) ([]byte, error) {
	fd := BuildFileDiff(oldName, newName, lines, context)
	if len(fd.Hunks) == 0 {
		return []byte{}, nil
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to print unified diff: %w", err)
	}
	return out, nil
}

func buildHunk(lines []DiffLine, oldOffset, newOffset int) *diff.Hunk {
	var body bytes.Buffer
	var origLines, newLines int32
	for _, l := range lines {
		switch l.Type {
		case LineSame:
			body.WriteByte(' ')
			origLines++
			newLines++
		case LineRemoved:
			body.WriteByte('-')
			origLines++
		case LineAdded:
			body.WriteByte('+')
			newLines++
		}
		body.WriteString(l.Content)
		body.WriteByte('\n')
	}

	// 某一侧为空时按惯例起始行号取其前一行
	origStart := int32(oldOffset)
	if origLines > 0 {
		origStart++
	}
	newStart := int32(newOffset)
	if newLines > 0 {
		newStart++
	}

	return &diff.Hunk{
		OrigStartLine: origStart,
		OrigLines:     origLines,
		NewStartLine:  newStart,
		NewLines:      newLines,
		Body:          body.Bytes(),
	}
}
