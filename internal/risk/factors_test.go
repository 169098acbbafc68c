package risk

import (
	"testing"

	"wisefido-risk/internal/models"

	"github.com/stretchr/testify/assert"
)

func sampleFactors() []models.RiskFactor {
	return []models.RiskFactor{
		{Name: "Prior falls", Icon: "⚠", Contribution: 0.35},
		{Name: "Sedatives", Icon: "💊", Contribution: 0.25},
		{Name: "Mobility aid", Icon: "🦯", Contribution: -0.10},
		{Name: "Family present", Icon: "👪", Contribution: -0.05},
	}
}

func TestCalculateTotalContribution(t *testing.T) {
	assert.InDelta(t, 0.45, CalculateTotalContribution(sampleFactors()), 1e-9)
	assert.Equal(t, 0.0, CalculateTotalContribution(nil))
	assert.Equal(t, 0.0, CalculateTotalContribution([]models.RiskFactor{}))
}

func TestFactorPartition(t *testing.T) {
	factors := append(sampleFactors(), models.RiskFactor{Name: "Neutral", Contribution: 0})

	protective := GetProtectiveFactors(factors)
	increasing := GetRiskFactors(factors)

	assert.Len(t, protective, 2)
	assert.Len(t, increasing, 2)
	for _, f := range protective {
		assert.Less(t, f.Contribution, 0.0)
	}
	for _, f := range increasing {
		assert.Greater(t, f.Contribution, 0.0)
	}

	// 非零因子恰好出现在一侧
	seen := map[string]int{}
	for _, f := range protective {
		seen[f.Name]++
	}
	for _, f := range increasing {
		seen[f.Name]++
	}
	for _, f := range factors {
		if f.Contribution == 0 {
			assert.Zero(t, seen[f.Name])
		} else {
			assert.Equal(t, 1, seen[f.Name], f.Name)
		}
	}
}

func TestFactorPartition_DoesNotAliasInput(t *testing.T) {
	factors := sampleFactors()
	increasing := GetRiskFactors(factors)
	increasing[0].Contribution = 0.99
	assert.Equal(t, 0.35, factors[0].Contribution)
}

func TestValidateContributions(t *testing.T) {
	assert.True(t, ValidateContributions(sampleFactors()))
	assert.True(t, ValidateContributions(nil))
	assert.True(t, ValidateContributions([]models.RiskFactor{{Contribution: 0.5}, {Contribution: -0.5}}))
	assert.False(t, ValidateContributions([]models.RiskFactor{{Contribution: 0.51}}))
	assert.False(t, ValidateContributions([]models.RiskFactor{{Contribution: 0.1}, {Contribution: -0.6}}))
}
