package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediscommon "wisefido-risk/common/redis"
	"wisefido-risk/internal/metrics"
	"wisefido-risk/internal/models"
	"wisefido-risk/internal/repository"
	"wisefido-risk/internal/risk"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// errInvalidScore 分数不合法（消息确认后丢弃）
var errInvalidScore = errors.New("invalid risk score")

// ScoreEventConsumer 评分事件消费者
// 输入：Redis Streams（PublishJSONToStream 格式，data 字段为 ScoreEvent JSON）
// 输出：patients 表 risk_score / risk_level / trend
type ScoreEventConsumer struct {
	redisClient    *redis.Client
	patientsRepo   repository.PatientsRepository
	logger         *zap.Logger
	stream         string
	groupName      string
	consumerName   string
	batchSize      int64
	trendThreshold float64

	blockTimeout time.Duration
}

// NewScoreEventConsumer 创建评分事件消费者
func NewScoreEventConsumer(
	redisClient *redis.Client,
	patientsRepo repository.PatientsRepository,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	trendThreshold float64,
) *ScoreEventConsumer {
	return &ScoreEventConsumer{
		redisClient:    redisClient,
		patientsRepo:   patientsRepo,
		logger:         logger,
		stream:         stream,
		groupName:      groupName,
		consumerName:   consumerName,
		batchSize:      batchSize,
		trendThreshold: trendThreshold,
		blockTimeout:   2 * time.Second,
	}
}

// Start 启动消费循环，ctx 取消后返回
func (c *ScoreEventConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Score event consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.consumeEvents(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume score events",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
		} else {
			backoffDuration = time.Second
		}
	}
}

// consumeEvents 先重试本消费者的 pending 消息，清空后再读取新消息
func (c *ScoreEventConsumer) consumeEvents(ctx context.Context) error {
	pending, err := rediscommon.ReadPendingFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read pending messages: %w", err)
	}
	if len(pending) > 0 {
		if failed := c.handleMessages(ctx, pending); failed > 0 {
			// 交给 Start 退避后再试
			return fmt.Errorf("%d pending score events still failing", failed)
		}
		return nil
	}

	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
		c.blockTimeout,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	c.handleMessages(ctx, messages)
	return nil
}

// handleMessages 逐条处理并确认，返回留在 pending 列表中的条数
func (c *ScoreEventConsumer) handleMessages(ctx context.Context, messages []rediscommon.StreamMessage) int {
	failed := 0
	for _, msg := range messages {
		result, err := c.processEvent(ctx, msg)
		metrics.ScoreEvents.WithLabelValues(result).Inc()

		if result == metrics.ResultFailed {
			// 未确认，下一轮从 pending 重试
			c.logger.Error("Failed to process score event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			failed++
			continue
		}
		if err != nil {
			c.logger.Warn("Dropping score event",
				zap.String("message_id", msg.ID),
				zap.String("result", result),
				zap.Error(err),
			)
		}

		if err := rediscommon.AckMessage(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return failed
}

// processEvent 处理单条事件，返回 metrics result 标签
func (c *ScoreEventConsumer) processEvent(ctx context.Context, msg rediscommon.StreamMessage) (string, error) {
	event, err := parseScoreEvent(msg)
	if err != nil {
		return metrics.ResultInvalid, err
	}

	input := risk.ScoreInputFromJSON(event.RiskScore)
	if !risk.IsValidRiskScore(input) {
		return metrics.ResultInvalid, fmt.Errorf("%w: patient %s: %s", errInvalidScore, event.PatientID, string(event.RiskScore))
	}
	raw, _ := risk.ScoreValue(input)
	score := float64(risk.NormalizeRiskScore(raw))

	previous, err := c.patientsRepo.GetPatient(ctx, event.TenantID, event.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return metrics.ResultNotFound, err
		}
		return metrics.ResultFailed, fmt.Errorf("failed to load patient: %w", err)
	}

	level := risk.GetRiskLevel(score)
	trend := risk.CalculateTrendDirectionWithThreshold(previous.RiskScore, score, c.trendThreshold)

	if err := c.patientsRepo.UpdateRiskScore(ctx, event.TenantID, event.PatientID, score, level, trend); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return metrics.ResultNotFound, err
		}
		return metrics.ResultFailed, fmt.Errorf("failed to update risk score: %w", err)
	}

	c.logger.Info("Applied score event",
		zap.String("event_id", event.EventID),
		zap.String("tenant_id", event.TenantID),
		zap.String("patient_id", event.PatientID),
		zap.Float64("previous_score", previous.RiskScore),
		zap.Float64("risk_score", score),
		zap.String("risk_level", string(level)),
		zap.String("trend", string(trend)),
	)
	return metrics.ResultUpdated, nil
}

// parseScoreEvent 解析 data 字段
func parseScoreEvent(msg rediscommon.StreamMessage) (*models.ScoreEvent, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("message %s has no data field", msg.ID)
	}

	var event models.ScoreEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score event: %w", err)
	}
	if event.TenantID == "" || event.PatientID == "" {
		return nil, fmt.Errorf("score event %s missing tenant_id or patient_id", msg.ID)
	}
	return &event, nil
}
