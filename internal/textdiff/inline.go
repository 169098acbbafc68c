package textdiff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SegmentOp 行内片段类型
type SegmentOp string

const (
	SegmentEqual  SegmentOp = "equal"
	SegmentDelete SegmentOp = "delete"
	SegmentInsert SegmentOp = "insert"
)

// Segment 行内差异片段
type Segment struct {
	Op   SegmentOp `json:"op"`
	Text string    `json:"text"`
}

// LinePair 一对被修改的行（removed 紧跟 added 时按顺序配对）
type LinePair struct {
	Removed  string    `json:"removed"`
	Added    string    `json:"added"`
	Segments []Segment `json:"segments"`
}

// InlineChanges 字符级差异（语义清理后），用于高亮一对修改行
func InlineChanges(removed, added string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(removed, added, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var op SegmentOp
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = SegmentDelete
		case diffmatchpatch.DiffInsert:
			op = SegmentInsert
		default:
			op = SegmentEqual
		}
		segments = append(segments, Segment{Op: op, Text: d.Text})
	}
	return segments
}

// ModifiedPairs 找出每个 "removed 块 + 紧随的 added 块"，按位置一一配对
// 多出来的行不配对。
func ModifiedPairs(lines []DiffLine) []LinePair {
	var pairs []LinePair
	k := 0
	for k < len(lines) {
		if lines[k].Type != LineRemoved {
			k++
			continue
		}
		rs := k
		for k < len(lines) && lines[k].Type == LineRemoved {
			k++
		}
		as := k
		for k < len(lines) && lines[k].Type == LineAdded {
			k++
		}
		removed, added := lines[rs:as], lines[as:k]
		for i := 0; i < len(removed) && i < len(added); i++ {
			pairs = append(pairs, LinePair{
				Removed:  removed[i].Content,
				Added:    added[i].Content,
				Segments: InlineChanges(removed[i].Content, added[i].Content),
			})
		}
	}
	return pairs
}
