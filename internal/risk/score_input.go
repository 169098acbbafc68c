package risk

import (
	"encoding/json"
	"math"
	"strconv"
)

// ScoreInput 风险分数输入（tagged union）
//
//	NumericScore  已知为数字的输入
//	InvalidScore  来自无类型边界（JSON、MQTT、Stream 字段）且不是数字的输入
//
// nil 表示缺失。
type ScoreInput interface {
	scoreInput()
}

// NumericScore 数值输入（仍需做有限值与范围校验）
type NumericScore float64

// InvalidScore 非数值输入，Raw 保留原始值便于日志
type InvalidScore struct {
	Raw any
}

func (NumericScore) scoreInput() {}
func (InvalidScore) scoreInput() {}

// ScoreInputOf 把无类型值映射为 ScoreInput
// 字符串（即使内容是数字）视为非数值；json.Number 视为数值。
func ScoreInputOf(v any) ScoreInput {
	switch val := v.(type) {
	case nil:
		return nil
	case ScoreInput:
		return val
	case float64:
		return NumericScore(val)
	case float32:
		return NumericScore(float64(val))
	case int:
		return NumericScore(float64(val))
	case int8:
		return NumericScore(float64(val))
	case int16:
		return NumericScore(float64(val))
	case int32:
		return NumericScore(float64(val))
	case int64:
		return NumericScore(float64(val))
	case uint:
		return NumericScore(float64(val))
	case uint8:
		return NumericScore(float64(val))
	case uint16:
		return NumericScore(float64(val))
	case uint32:
		return NumericScore(float64(val))
	case uint64:
		return NumericScore(float64(val))
	case json.Number:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return InvalidScore{Raw: val}
		}
		return NumericScore(f)
	default:
		return InvalidScore{Raw: v}
	}
}

// ScoreInputFromJSON 解析原始 JSON 片段（空 / null 视为缺失）
func ScoreInputFromJSON(raw json.RawMessage) ScoreInput {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := decodeNumber(raw, &v); err != nil {
		return InvalidScore{Raw: string(raw)}
	}
	return ScoreInputOf(v)
}

// IsValidRiskScore 有限数值且 0 <= x <= 100
func IsValidRiskScore(in ScoreInput) bool {
	n, ok := in.(NumericScore)
	if !ok {
		return false
	}
	x := float64(n)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return false
	}
	return x >= MinScore && x <= MaxScore
}

// IsValidScore typed 调用方的便捷版本
func IsValidScore(score float64) bool {
	return IsValidRiskScore(NumericScore(score))
}

// ScoreValue 取出数值（非 NumericScore 时 ok=false）
func ScoreValue(in ScoreInput) (float64, bool) {
	n, ok := in.(NumericScore)
	return float64(n), ok
}
