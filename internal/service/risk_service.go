package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wisefido-risk/common/database"
	mqttcommon "wisefido-risk/common/mqtt"
	rediscommon "wisefido-risk/common/redis"
	"wisefido-risk/internal/aggregator"
	"wisefido-risk/internal/changelog"
	"wisefido-risk/internal/config"
	"wisefido-risk/internal/consumer"
	httpapi "wisefido-risk/internal/http"
	"wisefido-risk/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RiskService 风险评分服务
type RiskService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttcommon.Client

	patientsRepo  repository.PatientsRepository
	cacheManager  *aggregator.CacheManager
	aggregator    *aggregator.DashboardAggregator
	scoreConsumer *consumer.ScoreEventConsumer
	mqttIngestor  *consumer.MQTTIngestor
	changelogSvc  *changelog.Service
	router        *httpapi.Router
	httpServer    *http.Server

	wg sync.WaitGroup
}

// NewRiskService 创建风险评分服务
func NewRiskService(cfg *config.Config, logger *zap.Logger) (*RiskService, error) {
	// 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 初始化 Redis（缓存 + 评分事件流）
	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// MQTT 可选
	var mqttClient *mqttcommon.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqttcommon.NewClient(&cfg.MQTT, logger)
		if err != nil {
			_ = multierr.Combine(rediscommon.Close(redisClient), database.Close(db))
			return nil, fmt.Errorf("failed to connect to mqtt: %w", err)
		}
	}

	return newRiskService(cfg, logger, db, redisClient, mqttClient), nil
}

// newRiskService 组装各组件（连接由调用方提供）
func newRiskService(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, mqttClient *mqttcommon.Client) *RiskService {
	patientsRepo := repository.NewPostgresPatientsRepository(db, logger)
	snapshotsRepo := repository.NewPostgresSnapshotsRepository(db, logger)

	interval := time.Duration(cfg.Risk.AggregationInterval) * time.Second
	kv := aggregator.NewRedisKVStore(redisClient)
	cacheManager := aggregator.NewCacheManager(kv, 3*interval, logger)
	dashboardAggregator := aggregator.NewDashboardAggregator(patientsRepo, cacheManager, logger)

	scoreConsumer := consumer.NewScoreEventConsumer(
		redisClient,
		patientsRepo,
		logger,
		cfg.Risk.ScoreStream,
		cfg.Risk.ConsumerGroup,
		cfg.Risk.ConsumerName,
		int64(cfg.Risk.BatchSize),
		cfg.Risk.TrendThreshold,
	)

	var mqttIngestor *consumer.MQTTIngestor
	if mqttClient != nil {
		mqttIngestor = consumer.NewMQTTIngestor(
			mqttClient,
			redisClient,
			logger,
			cfg.Risk.ScoreTopic,
			cfg.MQTT.QoS,
			cfg.Risk.ScoreStream,
			cfg.Risk.TenantID,
		)
	}

	var fetcher changelog.PageFetcher
	if cfg.Snapshot.BaseURL != "" {
		fetcher = changelog.NewSnapshotFetcher(cfg.Snapshot.BaseURL, logger)
	}
	changelogSvc := changelog.NewService(snapshotsRepo, fetcher, cfg.Diff.MaxLines, cfg.Diff.MaxCells, logger)

	var limiter *rate.Limiter
	if cfg.Diff.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Diff.RateLimit), max(1, int(cfg.Diff.RateLimit)))
	}

	router := httpapi.NewRouter(logger)
	router.RegisterRiskRoutes(httpapi.NewRiskHandler(
		cacheManager,
		dashboardAggregator,
		patientsRepo,
		cfg.Risk.TenantID,
		cfg.Risk.TrendThreshold,
		logger,
	))
	router.RegisterChangelogRoutes(httpapi.NewChangelogHandler(changelogSvc, logger), limiter)
	router.RegisterMetricsRoute()

	return &RiskService{
		config:        cfg,
		logger:        logger,
		db:            db,
		redisClient:   redisClient,
		mqttClient:    mqttClient,
		patientsRepo:  patientsRepo,
		cacheManager:  cacheManager,
		aggregator:    dashboardAggregator,
		scoreConsumer: scoreConsumer,
		mqttIngestor:  mqttIngestor,
		changelogSvc:  changelogSvc,
		router:        router,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler HTTP 路由
func (s *RiskService) Handler() http.Handler {
	return s.router
}

// Start 启动服务，阻塞到 ctx 取消或 HTTP 服务出错
func (s *RiskService) Start(ctx context.Context) error {
	s.logger.Info("Starting risk service",
		zap.String("tenant_id", s.config.Risk.TenantID),
		zap.String("http_addr", s.config.HTTP.Addr),
		zap.Bool("mqtt_enabled", s.mqttIngestor != nil),
	)

	// 启动聚合任务
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.startAggregation(ctx)
	}()

	// 启动评分事件消费者
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.scoreConsumer.Start(ctx); err != nil {
			s.logger.Error("Score event consumer stopped", zap.Error(err))
		}
	}()

	if s.mqttIngestor != nil {
		if err := s.mqttIngestor.Start(ctx); err != nil {
			return fmt.Errorf("failed to start mqtt ingestor: %w", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return fmt.Errorf("http server failed: %w", err)
	}
}

// Stop 停止服务（调用前需取消 Start 的 ctx）
func (s *RiskService) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if s.mqttIngestor != nil {
		err = multierr.Append(err, s.mqttIngestor.Stop())
	}
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	s.wg.Wait()

	err = multierr.Append(err, rediscommon.Close(s.redisClient))
	err = multierr.Append(err, database.Close(s.db))
	return err
}

// startAggregation 定时聚合
func (s *RiskService) startAggregation(ctx context.Context) {
	interval := time.Duration(s.config.Risk.AggregationInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting cohort aggregation",
		zap.Duration("interval", interval),
	)

	// 首次执行一次
	if err := s.aggregateOnce(ctx); err != nil {
		s.logger.Error("Failed to aggregate cohort on startup", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.aggregateOnce(ctx); err != nil {
				s.logger.Error("Failed to aggregate cohort", zap.Error(err))
			}
		}
	}
}

func (s *RiskService) aggregateOnce(ctx context.Context) error {
	tenantID := s.config.Risk.TenantID
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required, please set TENANT_ID environment variable")
	}
	_, err := s.aggregator.AggregateTenant(ctx, tenantID)
	return err
}
