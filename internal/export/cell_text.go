package export

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// sanitizeCellText 替换 XML 1.0 不允许的字符
// 控制字符（\t \n \r 除外）换成对应的 Control Pictures 符号（NUL -> ␀），
// 非法 UTF-8 字节与 U+FFFE/U+FFFF 换成 U+FFFD。
func sanitizeCellText(s string) string {
	if isCleanCellText(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteRune(utf8.RuneError)
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			b.WriteRune(0x2400 + r)
		case r == 0xFFFE || r == 0xFFFF:
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCleanCellText(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError || r == 0xFFFE || r == 0xFFFF {
			return false
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// splitCellText 按 UTF-16 单元数切分（单元格上限），空串返回一段
func splitCellText(s string, limit int) []string {
	var parts []string
	start, units := 0, 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units > 0 && units+n > limit {
			parts = append(parts, s[start:i])
			start, units = i, 0
		}
		units += n
	}
	return append(parts, s[start:])
}
