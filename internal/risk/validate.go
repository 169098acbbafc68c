package risk

import (
	"bytes"
	"encoding/json"
	"fmt"

	"wisefido-risk/internal/models"
)

// 校验错误信息（顺序固定）
const (
	ErrMsgPatientIDRequired  = "Patient ID is required"
	ErrMsgRiskScoreRequired  = "Valid risk score (0-100) is required"
	ErrMsgRiskFactorRequired = "At least one risk factor is required"
)

// PatientDraft 待校验的部分患者记录
// 来自外部 JSON 时，字段类型不可信：id 非字符串、riskFactors 非数组均按缺失处理。
type PatientDraft struct {
	ID          string
	RiskScore   ScoreInput
	RiskFactors []models.RiskFactor
}

// DraftFromPatient typed Patient -> PatientDraft
func DraftFromPatient(p models.Patient) PatientDraft {
	return PatientDraft{
		ID:          p.ID,
		RiskScore:   NumericScore(p.RiskScore),
		RiskFactors: p.RiskFactors,
	}
}

// UnmarshalJSON 宽松解析，只有非 JSON 对象才返回错误
func (d *PatientDraft) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = PatientDraft{}

	if idRaw, ok := raw["id"]; ok {
		var id string
		if err := json.Unmarshal(idRaw, &id); err == nil {
			d.ID = id
		}
	}

	d.RiskScore = ScoreInputFromJSON(raw["riskScore"])

	if factorsRaw, ok := raw["riskFactors"]; ok {
		var factors []models.RiskFactor
		if err := json.Unmarshal(factorsRaw, &factors); err == nil {
			d.RiskFactors = factors
		}
	}

	return nil
}

// ParsePatientDraft 解析请求体为 PatientDraft
func ParsePatientDraft(body []byte) (PatientDraft, error) {
	var d PatientDraft
	if err := json.Unmarshal(body, &d); err != nil {
		return PatientDraft{}, fmt.Errorf("failed to parse patient draft: %w", err)
	}
	return d, nil
}

// ValidatePatientData 累积所有错误（不短路），errors 为空时 valid=true
func ValidatePatientData(d PatientDraft) models.ValidationResult {
	errs := make([]string, 0, 3)
	if d.ID == "" {
		errs = append(errs, ErrMsgPatientIDRequired)
	}
	if d.RiskScore == nil || !IsValidRiskScore(d.RiskScore) {
		errs = append(errs, ErrMsgRiskScoreRequired)
	}
	if len(d.RiskFactors) == 0 {
		errs = append(errs, ErrMsgRiskFactorRequired)
	}
	return models.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func decodeNumber(raw []byte, out *any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}
