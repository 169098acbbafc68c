package repository

import (
	"context"
	"errors"

	"wisefido-risk/internal/models"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// PatientsRepository 患者风险数据 Repository 接口
type PatientsRepository interface {
	ListPatients(ctx context.Context, tenantID string) ([]models.Patient, error)
	GetPatient(ctx context.Context, tenantID, patientID string) (*models.Patient, error)
	// UpdateRiskScore 写入新分数/等级/趋势，并刷新 last_updated_at
	UpdateRiskScore(ctx context.Context, tenantID, patientID string, score float64, level models.RiskLevel, trend models.Trend) error
}

// SnapshotsRepository 页面存档快照 Repository 接口
type SnapshotsRepository interface {
	GetSnapshot(ctx context.Context, snapshotID string) (*models.Snapshot, error)
	LatestSnapshot(ctx context.Context, pageKey string) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, pageKey string, limit int) ([]models.Snapshot, error)
	SaveSnapshot(ctx context.Context, pageKey, content string) (string, error)
}
