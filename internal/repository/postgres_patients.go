package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"wisefido-risk/internal/models"

	"go.uber.org/zap"
)

// PostgresPatientsRepository 患者风险数据 Repository 实现
// 表：patients（risk_factors 为 JSONB 数组）
type PostgresPatientsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresPatientsRepository 创建患者 Repository
func NewPostgresPatientsRepository(db *sql.DB, logger *zap.Logger) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db, logger: logger}
}

// 确保实现了接口
var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

const patientColumns = `
			patient_id,
			tenant_id::text,
			risk_score,
			risk_level,
			risk_type,
			trend,
			GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (NOW() - last_updated_at)) / 60))::int AS last_updated_minutes,
			risk_factors,
			age_range,
			admission_date,
			clinical_notes,
			risk_summary`

// ListPatients 查询租户下所有患者
func (r *PostgresPatientsRepository) ListPatients(ctx context.Context, tenantID string) ([]models.Patient, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `
		SELECT` + patientColumns + `
		FROM patients
		WHERE tenant_id = $1
		ORDER BY patient_id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	return patients, nil
}

// GetPatient 查询单个患者，不存在返回 ErrNotFound
func (r *PostgresPatientsRepository) GetPatient(ctx context.Context, tenantID, patientID string) (*models.Patient, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT` + patientColumns + `
		FROM patients
		WHERE tenant_id = $1 AND patient_id = $2
	`

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, tenantID, patientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateRiskScore 更新评分，未命中任何行返回 ErrNotFound
func (r *PostgresPatientsRepository) UpdateRiskScore(ctx context.Context, tenantID, patientID string, score float64, level models.RiskLevel, trend models.Trend) error {
	query := `
		UPDATE patients
		SET risk_score = $3,
		    risk_level = $4,
		    trend = $5,
		    last_updated_at = NOW()
		WHERE tenant_id = $1 AND patient_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, tenantID, patientID, score, string(level), string(trend))
	if err != nil {
		return fmt.Errorf("failed to update risk score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	r.logger.Debug("Updated risk score",
		zap.String("tenant_id", tenantID),
		zap.String("patient_id", patientID),
		zap.Float64("risk_score", score),
		zap.String("risk_level", string(level)),
	)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*models.Patient, error) {
	var p models.Patient
	var level, trend string
	var factorsJSON []byte
	var ageRange, admissionDate, clinicalNotes, riskSummary sql.NullString

	if err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.RiskScore,
		&level,
		&p.RiskType,
		&trend,
		&p.LastUpdatedMinutes,
		&factorsJSON,
		&ageRange,
		&admissionDate,
		&clinicalNotes,
		&riskSummary,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}

	p.RiskLevel = models.RiskLevel(level)
	p.Trend = models.Trend(trend)
	p.AgeRange = ageRange.String
	p.AdmissionDate = admissionDate.String
	p.ClinicalNotes = clinicalNotes.String
	p.RiskSummary = riskSummary.String

	p.RiskFactors = []models.RiskFactor{}
	if len(factorsJSON) > 0 {
		if err := json.Unmarshal(factorsJSON, &p.RiskFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk factors for %s: %w", p.ID, err)
		}
	}

	return &p, nil
}
