package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqttcommon "wisefido-risk/common/mqtt"
	rediscommon "wisefido-risk/common/redis"
	"wisefido-risk/internal/models"
	"wisefido-risk/internal/risk"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscriber MQTT 订阅接口（*mqtt.Client 实现）
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// scorePayload MQTT 上报格式
type scorePayload struct {
	TenantID  string          `json:"tenant_id"`
	RiskScore json.RawMessage `json:"risk_score"`
}

// MQTTIngestor 订阅 risk/{patient_id}/score，校验后转发到评分事件流
type MQTTIngestor struct {
	subscriber    Subscriber
	redisClient   *redis.Client
	logger        *zap.Logger
	topic         string
	qos           byte
	stream        string
	defaultTenant string
}

// NewMQTTIngestor 创建 MQTT 采集器
func NewMQTTIngestor(
	subscriber Subscriber,
	redisClient *redis.Client,
	logger *zap.Logger,
	topic string,
	qos byte,
	stream string,
	defaultTenant string,
) *MQTTIngestor {
	return &MQTTIngestor{
		subscriber:    subscriber,
		redisClient:   redisClient,
		logger:        logger,
		topic:         topic,
		qos:           qos,
		stream:        stream,
		defaultTenant: defaultTenant,
	}
}

// Start 订阅主题
func (i *MQTTIngestor) Start(ctx context.Context) error {
	handler := func(topic string, payload []byte) error {
		return i.handleMessage(ctx, topic, payload)
	}
	if err := i.subscriber.Subscribe(i.topic, i.qos, handler); err != nil {
		return err
	}

	i.logger.Info("MQTT score ingestor started",
		zap.String("topic", i.topic),
		zap.String("stream", i.stream),
	)
	return nil
}

// Stop 取消订阅
func (i *MQTTIngestor) Stop() error {
	return i.subscriber.Unsubscribe(i.topic)
}

func (i *MQTTIngestor) handleMessage(ctx context.Context, topic string, payload []byte) error {
	patientID, err := patientIDFromTopic(topic)
	if err != nil {
		return err
	}

	var p scorePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal score payload: %w", err)
	}

	if !risk.IsValidRiskScore(risk.ScoreInputFromJSON(p.RiskScore)) {
		return fmt.Errorf("%w: patient %s: %s", errInvalidScore, patientID, string(p.RiskScore))
	}

	tenantID := p.TenantID
	if tenantID == "" {
		tenantID = i.defaultTenant
	}
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required for patient %s", patientID)
	}

	event := models.ScoreEvent{
		EventID:   uuid.NewString(),
		TenantID:  tenantID,
		PatientID: patientID,
		RiskScore: p.RiskScore,
		Timestamp: time.Now().Unix(),
	}

	msgID, err := rediscommon.PublishJSONToStream(ctx, i.redisClient, i.stream, event)
	if err != nil {
		return fmt.Errorf("failed to publish score event: %w", err)
	}

	i.logger.Debug("Forwarded score event",
		zap.String("event_id", event.EventID),
		zap.String("patient_id", patientID),
		zap.String("message_id", msgID),
	)
	return nil
}

// patientIDFromTopic 取 .../{patient_id}/score 中的 patient_id
func patientIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[len(parts)-1] != "score" || parts[len(parts)-2] == "" {
		return "", fmt.Errorf("unexpected score topic: %s", topic)
	}
	return parts[len(parts)-2], nil
}
