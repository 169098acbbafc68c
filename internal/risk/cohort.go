package risk

import (
	"wisefido-risk/internal/models"
)

// BuildCard 由 Patient 派生 dashboard 卡片
// 等级按分数重新推导，LevelConsistent 标记存储值是否一致。
func BuildCard(p models.Patient) models.PatientCard {
	level := GetRiskLevel(p.RiskScore)
	trend := p.Trend
	if trend == "" {
		trend = models.TrendStable
	}

	return models.PatientCard{
		PatientID:          p.ID,
		RiskType:           p.RiskType,
		RiskScore:          NormalizeRiskScore(p.RiskScore),
		RiskLevel:          level,
		LevelConsistent:    p.RiskLevel == level,
		ConfidenceInterval: GetConfidenceInterval(level),
		Bounds:             CalculateRiskBounds(p.RiskScore, level),
		Trend:              trend,
		Priority:           GetPriorityLevel(p.RiskScore, trend),
		LastUpdated:        FormatLastUpdated(p.LastUpdatedMinutes),
		TotalContribution:  CalculateTotalContribution(p.RiskFactors),
		RiskFactors:        GetRiskFactors(p.RiskFactors),
		ProtectiveFactors:  GetProtectiveFactors(p.RiskFactors),
		ContributionsValid: ValidateContributions(p.RiskFactors),
		RiskSummary:        p.RiskSummary,
	}
}

// SummarizeCohort 租户汇总（等级按分数推导，不信任存储值）
// GeneratedAt / InvalidCount 由调用方填写。
func SummarizeCohort(tenantID string, patients []models.Patient) models.CohortSummary {
	summary := models.CohortSummary{
		TenantID: tenantID,
		Total:    len(patients),
	}

	scores := make([]float64, 0, len(patients))
	for _, p := range patients {
		scores = append(scores, p.RiskScore)

		switch GetRiskLevel(p.RiskScore) {
		case models.RiskLevelHigh:
			summary.High++
		case models.RiskLevelMedium:
			summary.Medium++
		default:
			summary.Low++
		}

		if GetPriorityLevel(p.RiskScore, p.Trend) == models.PriorityCritical {
			summary.CriticalCount++
		}
	}

	summary.AverageRisk = CalculateAverageRisk(scores)
	summary.HighRiskCount = CountHighRiskOutcomes(scores)
	return summary
}

// Classify 单个分数分级（trend 为空时视为 stable）
func Classify(score float64, trend models.Trend) models.Classification {
	if trend == "" {
		trend = models.TrendStable
	}
	level := GetRiskLevel(score)
	return models.Classification{
		RiskScore:          NormalizeRiskScore(score),
		RiskLevel:          level,
		ConfidenceInterval: GetConfidenceInterval(level),
		Bounds:             CalculateRiskBounds(score, level),
		Trend:              trend,
		Priority:           GetPriorityLevel(score, trend),
	}
}
