package models

import "encoding/json"

// ScoreEvent 评分更新事件（MQTT 上报 -> Redis Streams）
// RiskScore 保留原始 JSON，由消费者做防御性校验
type ScoreEvent struct {
	EventID   string          `json:"event_id"`
	TenantID  string          `json:"tenant_id"`
	PatientID string          `json:"patient_id"`
	RiskScore json.RawMessage `json:"risk_score"`
	Timestamp int64           `json:"timestamp"`
}
