package config

import (
	"math"
	"os"
	"strconv"

	"wisefido-risk/common/config"
	"wisefido-risk/internal/risk"
	"wisefido-risk/internal/textdiff"
)

// Config 风险评分服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	Risk struct {
		// 租户 ID（当前先支持单个租户）
		TenantID string

		// 聚合间隔（秒），默认 30 秒；缓存 TTL 为 3 倍间隔
		AggregationInterval int

		// 评分事件流（Redis Streams）
		ScoreStream   string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int

		// MQTT 订阅主题，如 risk/+/score
		ScoreTopic string

		TrendThreshold float64
	}

	// 0 表示不限制
	Diff struct {
		MaxLines  int
		MaxCells  int     // 单次 LCS 表格数
		RateLimit float64 // 每秒请求数
	}

	HTTP struct {
		Addr string
	}

	Snapshot struct {
		BaseURL string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 默认值，再由环境变量覆盖
	cfg.Database = config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "owlrd",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = config.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT = config.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "wisefido-risk",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Risk.TenantID = getEnv("TENANT_ID", "")
	cfg.Risk.AggregationInterval = getEnvInt("RISK_AGGREGATION_INTERVAL", 30, 1)
	cfg.Risk.ScoreStream = getEnv("RISK_SCORE_STREAM", "risk:score-events")
	cfg.Risk.ConsumerGroup = getEnv("RISK_CONSUMER_GROUP", "risk-scorer-group")
	cfg.Risk.ConsumerName = getEnv("RISK_CONSUMER_NAME", "risk-scorer-1")
	cfg.Risk.BatchSize = getEnvInt("RISK_BATCH_SIZE", 10, 1)
	cfg.Risk.ScoreTopic = getEnv("RISK_SCORE_TOPIC", "risk/+/score")
	cfg.Risk.TrendThreshold = getEnvFloat("RISK_TREND_THRESHOLD", risk.DefaultTrendThreshold, 0)

	cfg.Diff.MaxLines = getEnvInt("DIFF_MAX_LINES", textdiff.DefaultMaxLines, 0)
	cfg.Diff.MaxCells = getEnvInt("DIFF_MAX_CELLS", textdiff.DefaultMaxCells, 0)
	cfg.Diff.RateLimit = getEnvFloat("DIFF_RATE_LIMIT", 5, 0)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8090")
	cfg.Snapshot.BaseURL = getEnv("SNAPSHOT_BASE_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 未设置、非法或小于 minValue 时返回默认值
func getEnvInt(key string, defaultValue, minValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v >= minValue {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue, minValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v >= minValue && !math.IsInf(v, 0) {
		return v
	}
	return defaultValue
}
