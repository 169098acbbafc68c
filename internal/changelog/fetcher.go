package changelog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PageFetcher 获取页面当前内容
type PageFetcher interface {
	Fetch(ctx context.Context, pageKey string) (string, error)
}

// SnapshotFetcher 通过 HTTP 拉取页面实时内容（GET {base}/pages/{page_key}）
type SnapshotFetcher struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewSnapshotFetcher 创建页面拉取客户端
func NewSnapshotFetcher(baseURL string, logger *zap.Logger) *SnapshotFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "text/plain, text/markdown, */*")

	return &SnapshotFetcher{
		httpClient: client,
		logger:     logger,
	}
}

var _ PageFetcher = (*SnapshotFetcher)(nil)

// Fetch 返回页面正文，非 2xx 视为错误
func (f *SnapshotFetcher) Fetch(ctx context.Context, pageKey string) (string, error) {
	if pageKey == "" {
		return "", fmt.Errorf("page_key is required")
	}

	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetPathParam("page_key", pageKey).
		Get("/pages/{page_key}")
	if err != nil {
		return "", fmt.Errorf("failed to fetch page %s: %w", pageKey, err)
	}
	if resp.IsError() {
		f.logger.Warn("Page fetch returned error status",
			zap.String("page_key", pageKey),
			zap.Int("status_code", resp.StatusCode()),
		)
		return "", fmt.Errorf("failed to fetch page %s: status %d", pageKey, resp.StatusCode())
	}

	f.logger.Debug("Fetched live page",
		zap.String("page_key", pageKey),
		zap.Int("content_bytes", len(resp.Body())),
	)
	return string(resp.Body()), nil
}
