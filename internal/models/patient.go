package models

// RiskLevel 风险等级（由 riskScore 按固定阈值推导）
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "HIGH"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelLow    RiskLevel = "LOW"
)

// Trend 风险趋势
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Priority 处置优先级（分数段 + 趋势）
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// RiskFactor 单个风险因子
// Contribution 取值 [-1, 1]：正数增加风险，负数为保护因素
type RiskFactor struct {
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Contribution float64 `json:"contribution"`
}

// Patient 带风险评分的患者记录（与 dashboard 数据结构保持一致）
type Patient struct {
	ID                 string       `json:"id"`
	TenantID           string       `json:"tenant_id,omitempty"`
	RiskScore          float64      `json:"riskScore"`
	RiskLevel          RiskLevel    `json:"riskLevel"`
	RiskType           string       `json:"riskType"`
	Trend              Trend        `json:"trend"`
	LastUpdatedMinutes int          `json:"lastUpdatedMinutes"`
	RiskFactors        []RiskFactor `json:"riskFactors"`

	// 描述字段，原样透传
	AgeRange      string `json:"ageRange,omitempty"`
	AdmissionDate string `json:"admissionDate,omitempty"`
	ClinicalNotes string `json:"clinicalNotes,omitempty"`
	RiskSummary   string `json:"riskSummary,omitempty"`
}

// ScoreBounds 置信区间上下界
type ScoreBounds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValidationResult 校验结果（错误全部累积，不短路）
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Classification 单个分数的分级结果
type Classification struct {
	RiskScore          int         `json:"risk_score"`
	RiskLevel          RiskLevel   `json:"risk_level"`
	ConfidenceInterval float64     `json:"confidence_interval"`
	Bounds             ScoreBounds `json:"bounds"`
	Trend              Trend       `json:"trend"`
	Priority           Priority    `json:"priority"`
	LastUpdated        string      `json:"last_updated,omitempty"`
}
