package risk

import (
	"fmt"

	"wisefido-risk/internal/models"
)

// DefaultTrendThreshold 趋势判定阈值（严格大于才算变化）
const DefaultTrendThreshold = 5.0

// CalculateTrendDirection 使用默认阈值 5
func CalculateTrendDirection(previous, current float64) models.Trend {
	return CalculateTrendDirectionWithThreshold(previous, current, DefaultTrendThreshold)
}

// CalculateTrendDirectionWithThreshold current-previous > t 为 up，previous-current > t 为 down，否则 stable
func CalculateTrendDirectionWithThreshold(previous, current, threshold float64) models.Trend {
	switch {
	case current-previous > threshold:
		return models.TrendUp
	case previous-current > threshold:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// CalculateAverageRisk 算术平均后四舍五入，空列表返回 0
func CalculateAverageRisk(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return int(roundHalfUp(sum / float64(len(scores))))
}

// CountHighRiskOutcomes 使用默认阈值 70
func CountHighRiskOutcomes(scores []float64) int {
	return CountHighRiskOutcomesWithThreshold(scores, HighRiskThreshold)
}

// CountHighRiskOutcomesWithThreshold 统计 >= threshold 的分数个数
func CountHighRiskOutcomesWithThreshold(scores []float64, threshold float64) int {
	count := 0
	for _, s := range scores {
		if s >= threshold {
			count++
		}
	}
	return count
}

// GetPriorityLevel 分数段结合趋势升级紧急程度
func GetPriorityLevel(score float64, trend models.Trend) models.Priority {
	switch {
	case score >= 80:
		return models.PriorityCritical
	case score >= 70 && trend == models.TrendUp:
		return models.PriorityCritical
	case score >= 70:
		return models.PriorityHigh
	case score >= 60 && trend == models.TrendUp:
		return models.PriorityHigh
	case score >= 50:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// FormatLastUpdated <60 分钟显示 "~Nm"，否则按整小时向下取整 "~Nh"
func FormatLastUpdated(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("~%dm", minutes)
	}
	return fmt.Sprintf("~%dh", minutes/60)
}
