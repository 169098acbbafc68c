package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wisefido-risk/internal/models"

	"go.uber.org/zap"
)

// CacheManager 租户 dashboard 缓存管理器
// Key:
//   - risk:cohort:{tenant_id}:summary  CohortSummary
//   - risk:cohort:{tenant_id}:cards    []PatientCard（已按优先级排序）
type CacheManager struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheManager 创建缓存管理器，ttl 通常为聚合间隔的 3 倍
func NewCacheManager(kv KVStore, ttl time.Duration, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

func summaryKey(tenantID string) string {
	return fmt.Sprintf("risk:cohort:%s:summary", tenantID)
}

func cardsKey(tenantID string) string {
	return fmt.Sprintf("risk:cohort:%s:cards", tenantID)
}

// UpdateCohort 同一事务写入汇总和卡片
func (c *CacheManager) UpdateCohort(ctx context.Context, cohort *models.Cohort) error {
	tenantID := cohort.Summary.TenantID
	cards := cohort.Cards
	if cards == nil {
		cards = []models.PatientCard{}
	}
	return c.setJSON(ctx, map[string]any{
		summaryKey(tenantID): cohort.Summary,
		cardsKey(tenantID):   cards,
	})
}

// GetCohort 一次读取汇总 + 卡片，任一缺失返回 ErrCacheMiss
func (c *CacheManager) GetCohort(ctx context.Context, tenantID string) (*models.Cohort, error) {
	raws, err := c.kv.GetMany(ctx, summaryKey(tenantID), cardsKey(tenantID))
	if err != nil {
		return nil, err
	}

	cohort := &models.Cohort{}
	if err := json.Unmarshal([]byte(raws[0]), &cohort.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", summaryKey(tenantID), err)
	}
	if err := json.Unmarshal([]byte(raws[1]), &cohort.Cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", cardsKey(tenantID), err)
	}
	return cohort, nil
}

func (c *CacheManager) setJSON(ctx context.Context, values map[string]any) error {
	encoded := make(map[string]string, len(values))
	keys := make([]string, 0, len(values))
	for key, v := range values {
		jsonData, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		encoded[key] = string(jsonData)
		keys = append(keys, key)
	}
	if err := c.kv.SetMany(ctx, encoded, c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated cohort cache",
		zap.Strings("keys", keys),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}
