package aggregator

import (
	"context"
	"fmt"
	"time"

	"wisefido-risk/internal/metrics"
	"wisefido-risk/internal/models"
	"wisefido-risk/internal/repository"
	"wisefido-risk/internal/risk"

	"go.uber.org/zap"
)

// DashboardAggregator 租户 dashboard 聚合器
// 输入：PostgreSQL patients 表
// 输出：Redis risk:cohort:{tenant_id}:summary / :cards
type DashboardAggregator struct {
	patientsRepo repository.PatientsRepository
	cache        *CacheManager
	logger       *zap.Logger

	now func() time.Time
}

// NewDashboardAggregator 创建聚合器
func NewDashboardAggregator(
	patientsRepo repository.PatientsRepository,
	cache *CacheManager,
	logger *zap.Logger,
) *DashboardAggregator {
	return &DashboardAggregator{
		patientsRepo: patientsRepo,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

// AggregateTenant 聚合单个租户并写入缓存
// 校验失败的记录计入 InvalidCount，不参与卡片和统计。
func (a *DashboardAggregator) AggregateTenant(ctx context.Context, tenantID string) (*models.Cohort, error) {
	patients, err := a.patientsRepo.ListPatients(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	valid := make([]models.Patient, 0, len(patients))
	invalid := 0
	for _, p := range patients {
		result := risk.ValidatePatientData(risk.DraftFromPatient(p))
		if !result.Valid {
			invalid++
			a.logger.Warn("Skipping invalid patient record",
				zap.String("tenant_id", tenantID),
				zap.String("patient_id", p.ID),
				zap.Strings("errors", result.Errors),
			)
			continue
		}
		valid = append(valid, p)
	}

	sorted := risk.SortByRiskPriority(valid)
	cards := make([]models.PatientCard, 0, len(sorted))
	for _, p := range sorted {
		card := risk.BuildCard(p)
		if !card.LevelConsistent {
			a.logger.Debug("Stored risk level disagrees with score",
				zap.String("patient_id", p.ID),
				zap.String("stored_level", string(p.RiskLevel)),
				zap.String("derived_level", string(card.RiskLevel)),
			)
		}
		metrics.PatientsClassified.WithLabelValues(string(card.RiskLevel)).Inc()
		cards = append(cards, card)
	}

	summary := risk.SummarizeCohort(tenantID, valid)
	summary.InvalidCount = invalid
	summary.GeneratedAt = a.now().Unix()

	cohort := &models.Cohort{Summary: summary, Cards: cards}
	if err := a.cache.UpdateCohort(ctx, cohort); err != nil {
		return nil, err
	}

	a.logger.Info("Aggregated risk cohort",
		zap.String("tenant_id", tenantID),
		zap.Int("total", summary.Total),
		zap.Int("high", summary.High),
		zap.Int("critical", summary.CriticalCount),
		zap.Int("invalid", invalid),
	)

	return cohort, nil
}
