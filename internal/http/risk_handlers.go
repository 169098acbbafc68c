package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"wisefido-risk/internal/aggregator"
	"wisefido-risk/internal/export"
	"wisefido-risk/internal/models"
	"wisefido-risk/internal/repository"
	"wisefido-risk/internal/risk"

	"go.uber.org/zap"
)

// CohortCache 读取缓存的租户 dashboard
type CohortCache interface {
	GetCohort(ctx context.Context, tenantID string) (*models.Cohort, error)
}

// CohortAggregator 缓存未命中时按需聚合
type CohortAggregator interface {
	AggregateTenant(ctx context.Context, tenantID string) (*models.Cohort, error)
}

// RiskHandler 风险评分 API
type RiskHandler struct {
	cache          CohortCache
	aggregator     CohortAggregator
	patients       repository.PatientsRepository
	defaultTenant  string
	trendThreshold float64
	logger         *zap.Logger
}

func NewRiskHandler(
	cache CohortCache,
	agg CohortAggregator,
	patients repository.PatientsRepository,
	defaultTenant string,
	trendThreshold float64,
	logger *zap.Logger,
) *RiskHandler {
	return &RiskHandler{
		cache:          cache,
		aggregator:     agg,
		patients:       patients,
		defaultTenant:  defaultTenant,
		trendThreshold: trendThreshold,
		logger:         logger,
	}
}

func (h *RiskHandler) tenantID(r *http.Request) string {
	if t := r.URL.Query().Get("tenant_id"); t != "" {
		return t
	}
	return h.defaultTenant
}

// GET /api/v1/risk/cohort?tenant_id=
func (h *RiskHandler) GetCohort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := h.tenantID(r)
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("tenant_id is required"))
		return
	}

	cohort, err := h.cache.GetCohort(ctx, tenantID)
	if errors.Is(err, aggregator.ErrCacheMiss) && h.aggregator != nil {
		cohort, err = h.aggregator.AggregateTenant(ctx, tenantID)
	}
	if err != nil {
		if errors.Is(err, aggregator.ErrCacheMiss) {
			writeJSON(w, http.StatusNotFound, Fail("cohort not aggregated yet"))
			return
		}
		h.logger.Error("Failed to load cohort", zap.String("tenant_id", tenantID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load cohort"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(cohort))
}

// ClassifyRequest POST /api/v1/risk/classify
type ClassifyRequest struct {
	Score         json.RawMessage `json:"score"`
	PreviousScore *float64        `json:"previous_score,omitempty"`
	Trend         models.Trend    `json:"trend,omitempty"`
	Minutes       *int            `json:"minutes,omitempty"`
}

// Classify 对单个分数做分级；previous_score 存在时按阈值计算趋势
func (h *RiskHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := readBodyJSON(w, r, maxBodyBytes, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	input := risk.ScoreInputFromJSON(req.Score)
	if !risk.IsValidRiskScore(input) {
		writeJSON(w, http.StatusBadRequest, Fail(risk.ErrMsgRiskScoreRequired))
		return
	}
	score, _ := risk.ScoreValue(input)

	trend := req.Trend
	if req.PreviousScore != nil {
		trend = risk.CalculateTrendDirectionWithThreshold(*req.PreviousScore, score, h.trendThreshold)
	}

	resp := risk.Classify(score, trend)
	if req.Minutes != nil {
		resp.LastUpdated = risk.FormatLastUpdated(*req.Minutes)
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// ValidatePatient POST /api/v1/risk/patients/validate
// 校验失败仍返回 200，结果在 result.valid / result.errors 中
func (h *RiskHandler) ValidatePatient(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, maxBodyBytes)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	draft, err := risk.ParsePatientDraft(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("body must be a JSON object"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(risk.ValidatePatientData(draft)))
}

// ExportRoster GET /api/v1/risk/roster.xlsx?tenant_id=
func (h *RiskHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenantID(r)
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("tenant_id is required"))
		return
	}

	patients, err := h.patients.ListPatients(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("Failed to list patients", zap.String("tenant_id", tenantID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list patients"))
		return
	}

	data, err := export.GenerateRiskRoster(patients)
	if err != nil {
		h.logger.Error("Failed to generate roster", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate roster"))
		return
	}

	writeXLSX(w, "risk-roster-"+tenantID+".xlsx", data)
}
