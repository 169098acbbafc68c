package risk

import (
	"cmp"
	"slices"

	"wisefido-risk/internal/models"
)

// SortByRiskPriority 返回新切片：先按等级 HIGH > MEDIUM > LOW，同级按分数降序
// 排序是稳定的，入参切片及其元素不会被修改。
func SortByRiskPriority(patients []models.Patient) []models.Patient {
	sorted := slices.Clone(patients)
	slices.SortStableFunc(sorted, func(a, b models.Patient) int {
		if c := cmp.Compare(RiskLevelRank(b.RiskLevel), RiskLevelRank(a.RiskLevel)); c != 0 {
			return c
		}
		return cmp.Compare(b.RiskScore, a.RiskScore)
	})
	return sorted
}
