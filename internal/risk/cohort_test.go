package risk

import (
	"testing"

	"wisefido-risk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildCard(t *testing.T) {
	card := BuildCard(models.Patient{
		ID:                 "PT-1",
		RiskType:           "Falls",
		RiskScore:          72.4,
		RiskLevel:          models.RiskLevelMedium,
		Trend:              models.TrendUp,
		LastUpdatedMinutes: 90,
		RiskFactors:        sampleFactors(),
	})

	assert.Equal(t, "PT-1", card.PatientID)
	assert.Equal(t, 72, card.RiskScore)
	assert.Equal(t, models.RiskLevelHigh, card.RiskLevel)
	assert.False(t, card.LevelConsistent)
	assert.Equal(t, 8.0, card.ConfidenceInterval)
	assert.InDelta(t, 64.4, card.Bounds.Low, 1e-9)
	assert.InDelta(t, 80.4, card.Bounds.High, 1e-9)
	assert.Equal(t, models.PriorityCritical, card.Priority)
	assert.Equal(t, "~1h", card.LastUpdated)
	assert.InDelta(t, 0.45, card.TotalContribution, 1e-9)
	assert.Len(t, card.RiskFactors, 2)
	assert.Len(t, card.ProtectiveFactors, 2)
	assert.True(t, card.ContributionsValid)
}

func TestBuildCard_DefaultsTrend(t *testing.T) {
	card := BuildCard(models.Patient{ID: "x", RiskScore: 10, RiskLevel: models.RiskLevelLow})
	assert.Equal(t, models.TrendStable, card.Trend)
	assert.True(t, card.LevelConsistent)
	assert.Equal(t, models.PriorityLow, card.Priority)
}

func TestSummarizeCohort(t *testing.T) {
	patients := []models.Patient{
		{ID: "a", RiskScore: 85, Trend: models.TrendStable},
		{ID: "b", RiskScore: 75, Trend: models.TrendUp},
		{ID: "c", RiskScore: 55, Trend: models.TrendStable},
		{ID: "d", RiskScore: 25, Trend: models.TrendDown},
	}

	s := SummarizeCohort("tenant-1", patients)

	assert.Equal(t, "tenant-1", s.TenantID)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 1, s.Low)
	assert.Equal(t, 60, s.AverageRisk)
	assert.Equal(t, 2, s.HighRiskCount)
	assert.Equal(t, 2, s.CriticalCount)
}

func TestSummarizeCohort_Empty(t *testing.T) {
	s := SummarizeCohort("t", nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.AverageRisk)
}

func TestClassify(t *testing.T) {
	c := Classify(72.4, "")
	assert.Equal(t, 72, c.RiskScore)
	assert.Equal(t, models.RiskLevelHigh, c.RiskLevel)
	assert.Equal(t, 8.0, c.ConfidenceInterval)
	assert.InDelta(t, 64.4, c.Bounds.Low, 1e-9)
	assert.InDelta(t, 80.4, c.Bounds.High, 1e-9)
	assert.Equal(t, models.TrendStable, c.Trend)
	assert.Equal(t, models.PriorityHigh, c.Priority)

	c = Classify(65, models.TrendUp)
	assert.Equal(t, models.RiskLevelMedium, c.RiskLevel)
	assert.Equal(t, models.PriorityHigh, c.Priority)
}
