package models

// PatientCard dashboard 卡片（由 Patient 派生）
type PatientCard struct {
	PatientID          string       `json:"patient_id"`
	RiskType           string       `json:"risk_type"`
	RiskScore          int          `json:"risk_score"` // 归一化后的分数
	RiskLevel          RiskLevel    `json:"risk_level"`
	LevelConsistent    bool         `json:"level_consistent"` // 存储的 riskLevel 是否与分数一致
	ConfidenceInterval float64      `json:"confidence_interval"`
	Bounds             ScoreBounds  `json:"bounds"`
	Trend              Trend        `json:"trend"`
	Priority           Priority     `json:"priority"`
	LastUpdated        string       `json:"last_updated"` // "~5m" / "~2h"
	TotalContribution  float64      `json:"total_contribution"`
	RiskFactors        []RiskFactor `json:"risk_factors"`
	ProtectiveFactors  []RiskFactor `json:"protective_factors"`
	ContributionsValid bool         `json:"contributions_valid"`
	RiskSummary        string       `json:"risk_summary,omitempty"`
}

// CohortSummary 租户级别的汇总统计
type CohortSummary struct {
	TenantID      string `json:"tenant_id"`
	Total         int    `json:"total"`
	High          int    `json:"high"`
	Medium        int    `json:"medium"`
	Low           int    `json:"low"`
	AverageRisk   int    `json:"average_risk"`
	HighRiskCount int    `json:"high_risk_count"`
	CriticalCount int    `json:"critical_count"`
	InvalidCount  int    `json:"invalid_count"`
	GeneratedAt   int64  `json:"generated_at"` // Unix timestamp
}

// Cohort 汇总 + 卡片（API 返回结构）
type Cohort struct {
	Summary CohortSummary `json:"summary"`
	Cards   []PatientCard `json:"cards"`
}
