package risk

import (
	"testing"

	"wisefido-risk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTrendDirection(t *testing.T) {
	assert.Equal(t, models.TrendUp, CalculateTrendDirection(50, 60))
	assert.Equal(t, models.TrendDown, CalculateTrendDirection(60, 50))
	assert.Equal(t, models.TrendStable, CalculateTrendDirection(50, 53))
	// 等于阈值视为 stable
	assert.Equal(t, models.TrendStable, CalculateTrendDirection(50, 55))
	assert.Equal(t, models.TrendStable, CalculateTrendDirection(55, 50))

	assert.Equal(t, models.TrendUp, CalculateTrendDirectionWithThreshold(50, 53, 2))
	assert.Equal(t, models.TrendDown, CalculateTrendDirectionWithThreshold(50, 49, 0))
}

func TestCalculateAverageRisk(t *testing.T) {
	assert.Equal(t, 0, CalculateAverageRisk(nil))
	assert.Equal(t, 50, CalculateAverageRisk([]float64{40, 60}))
	assert.Equal(t, 56, CalculateAverageRisk([]float64{55, 56}))
	assert.Equal(t, 62, CalculateAverageRisk([]float64{85, 75, 55, 25, 70}))
}

func TestCountHighRiskOutcomes(t *testing.T) {
	scores := []float64{85, 70, 69.9, 40, 10}
	assert.Equal(t, 2, CountHighRiskOutcomes(scores))
	assert.Equal(t, 4, CountHighRiskOutcomesWithThreshold(scores, 40))
	assert.Equal(t, 0, CountHighRiskOutcomes(nil))
}

func TestGetPriorityLevel(t *testing.T) {
	cases := []struct {
		score float64
		trend models.Trend
		want  models.Priority
	}{
		{85, models.TrendStable, models.PriorityCritical},
		{80, models.TrendDown, models.PriorityCritical},
		{75, models.TrendUp, models.PriorityCritical},
		{72, models.TrendStable, models.PriorityHigh},
		{70, models.TrendDown, models.PriorityHigh},
		{65, models.TrendUp, models.PriorityHigh},
		{65, models.TrendStable, models.PriorityMedium},
		{55, models.TrendStable, models.PriorityMedium},
		{50, models.TrendDown, models.PriorityMedium},
		{49.9, models.TrendUp, models.PriorityLow},
		{30, models.TrendDown, models.PriorityLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, GetPriorityLevel(c.score, c.trend), "%v/%s", c.score, c.trend)
	}
}

func TestFormatLastUpdated(t *testing.T) {
	assert.Equal(t, "~0m", FormatLastUpdated(0))
	assert.Equal(t, "~5m", FormatLastUpdated(5))
	assert.Equal(t, "~59m", FormatLastUpdated(59))
	assert.Equal(t, "~1h", FormatLastUpdated(60))
	assert.Equal(t, "~1h", FormatLastUpdated(90))
	assert.Equal(t, "~2h", FormatLastUpdated(120))
	assert.Equal(t, "~24h", FormatLastUpdated(1441))
}
