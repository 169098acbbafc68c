// Package risk 风险评分与分级工具函数。
//
// 所有函数都是纯函数：不修改入参、不持有全局可变状态，可在多个 goroutine 中并发调用。
package risk

import (
	"math"

	"wisefido-risk/internal/models"
)

// 分级阈值（下界包含）
const (
	HighRiskThreshold   = 70.0
	MediumRiskThreshold = 40.0

	MinScore = 0.0
	MaxScore = 100.0
)

// GetRiskLevel 分数 -> 风险等级
// >=70 HIGH；40<=s<70 MEDIUM；<40 LOW。比较前不做取整。
func GetRiskLevel(score float64) models.RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return models.RiskLevelHigh
	case score >= MediumRiskThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// GetConfidenceInterval 固定的 ± 区间宽度（仅用于展示）
// 未知等级返回 0
func GetConfidenceInterval(level models.RiskLevel) float64 {
	switch level {
	case models.RiskLevelHigh:
		return 8
	case models.RiskLevelMedium:
		return 6
	case models.RiskLevelLow:
		return 4
	default:
		return 0
	}
}

// RiskLevelRank 用于排序：HIGH=3, MEDIUM=2, LOW=1, 未知=0
func RiskLevelRank(level models.RiskLevel) int {
	switch level {
	case models.RiskLevelHigh:
		return 3
	case models.RiskLevelMedium:
		return 2
	case models.RiskLevelLow:
		return 1
	default:
		return 0
	}
}

// NormalizeRiskScore 截断到 [0,100] 后四舍五入（.5 向上）
func NormalizeRiskScore(score float64) int {
	return int(roundHalfUp(clamp(score, MinScore, MaxScore)))
}

// CalculateRiskBounds 以 GetConfidenceInterval(level) 为半宽的对称区间，截断到 [0,100]
func CalculateRiskBounds(score float64, level models.RiskLevel) models.ScoreBounds {
	width := GetConfidenceInterval(level)
	return models.ScoreBounds{
		Low:  clamp(score-width, MinScore, MaxScore),
		High: clamp(score+width, MinScore, MaxScore),
	}
}

// IsLevelConsistent 存储的 riskLevel 是否与 riskScore 推导结果一致
func IsLevelConsistent(p models.Patient) bool {
	return p.RiskLevel == GetRiskLevel(p.RiskScore)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundHalfUp 与 JS Math.round 一致：x.5 朝 +∞ 方向取整（-2.5 -> -2）
func roundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}
