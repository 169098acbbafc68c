package risk

import (
	"math"

	"wisefido-risk/internal/models"
)

// MaxFactorContribution 单个因子贡献度绝对值上限（避免单一因子主导解释）
const MaxFactorContribution = 0.5

// CalculateTotalContribution 贡献度求和，空列表返回 0
func CalculateTotalContribution(factors []models.RiskFactor) float64 {
	total := 0.0
	for _, f := range factors {
		total += f.Contribution
	}
	return total
}

// GetProtectiveFactors contribution < 0 的因子
func GetProtectiveFactors(factors []models.RiskFactor) []models.RiskFactor {
	return filterFactors(factors, func(c float64) bool { return c < 0 })
}

// GetRiskFactors contribution > 0 的因子（0 不属于任何一侧）
func GetRiskFactors(factors []models.RiskFactor) []models.RiskFactor {
	return filterFactors(factors, func(c float64) bool { return c > 0 })
}

// ValidateContributions 所有因子 |contribution| <= 0.5 时返回 true
func ValidateContributions(factors []models.RiskFactor) bool {
	for _, f := range factors {
		if !(math.Abs(f.Contribution) <= MaxFactorContribution) {
			return false
		}
	}
	return true
}

func filterFactors(factors []models.RiskFactor, keep func(float64) bool) []models.RiskFactor {
	result := make([]models.RiskFactor, 0, len(factors))
	for _, f := range factors {
		if keep(f.Contribution) {
			result = append(result, f)
		}
	}
	return result
}
