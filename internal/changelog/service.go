package changelog

import (
	"context"
	"errors"
	"fmt"

	"wisefido-risk/internal/metrics"
	"wisefido-risk/internal/repository"
	"wisefido-risk/internal/textdiff"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LiveRef CompareLive 中未落库的实时内容引用
const LiveRef = "live"

// Changelog 两个版本之间的变更记录
type Changelog struct {
	ID      string              `json:"id"`
	OldRef  string              `json:"old_ref"`
	NewRef  string              `json:"new_ref"`
	Lines   []textdiff.DiffLine `json:"lines"`
	Stats   textdiff.Stats      `json:"stats"`
	Unified string              `json:"unified,omitempty"`
}

// Service 快照对比服务
type Service struct {
	snapshots repository.SnapshotsRepository
	fetcher   PageFetcher
	maxLines  int
	maxCells  int
	logger    *zap.Logger
}

// NewService 创建快照对比服务（fetcher 可为 nil，此时 CompareLive 不可用）
// maxLines / maxCells 为 0 时不限制。
func NewService(snapshots repository.SnapshotsRepository, fetcher PageFetcher, maxLines, maxCells int, logger *zap.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		fetcher:   fetcher,
		maxLines:  maxLines,
		maxCells:  maxCells,
		logger:    logger,
	}
}

// CompareSnapshots 对比两个存档快照
func (s *Service) CompareSnapshots(ctx context.Context, oldID, newID string) (*Changelog, error) {
	oldSnap, err := s.snapshots.GetSnapshot(ctx, oldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", oldID, err)
	}
	newSnap, err := s.snapshots.GetSnapshot(ctx, newID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", newID, err)
	}

	return s.Compare(oldSnap.SnapshotID, newSnap.SnapshotID, oldSnap.Content, newSnap.Content)
}

// CompareLive 最新存档 vs 页面实时内容
// 内容有变化（或尚无存档）时把实时内容存为新快照，NewRef 为新 snapshot_id。
func (s *Service) CompareLive(ctx context.Context, pageKey string) (*Changelog, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("live page fetching is not configured")
	}

	oldRef, oldContent := "", ""
	latest, err := s.snapshots.LatestSnapshot(ctx, pageKey)
	switch {
	case err == nil:
		oldRef, oldContent = latest.SnapshotID, latest.Content
	case errors.Is(err, repository.ErrNotFound):
		// 首次存档，旧版本视为空
	default:
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	live, err := s.fetcher.Fetch(ctx, pageKey)
	if err != nil {
		return nil, err
	}

	newRef := LiveRef
	if latest == nil || live != oldContent {
		if err := s.checkLimits(oldContent, live); err != nil {
			return nil, err
		}
		id, err := s.snapshots.SaveSnapshot(ctx, pageKey, live)
		if err != nil {
			return nil, fmt.Errorf("failed to archive live page: %w", err)
		}
		newRef = id
	}

	return s.Compare(oldRef, newRef, oldContent, live)
}

// Compare 对比任意两段文本，先做行数与表大小限制
func (s *Service) Compare(oldRef, newRef, oldText, newText string) (*Changelog, error) {
	if err := s.checkLimits(oldText, newText); err != nil {
		return nil, err
	}

	lines := textdiff.DiffLines(oldText, newText)
	unified, err := textdiff.Unified(refName("a", oldRef), refName("b", newRef), lines, textdiff.DefaultContextLines)
	if err != nil {
		return nil, err
	}
	metrics.ObserveDiff(len(lines))

	cl := &Changelog{
		ID:      uuid.NewString(),
		OldRef:  oldRef,
		NewRef:  newRef,
		Lines:   lines,
		Stats:   textdiff.DiffStats(lines),
		Unified: string(unified),
	}

	s.logger.Info("Built changelog",
		zap.String("changelog_id", cl.ID),
		zap.String("old_ref", oldRef),
		zap.String("new_ref", newRef),
		zap.Int("added", cl.Stats.Added),
		zap.Int("removed", cl.Stats.Removed),
	)
	return cl, nil
}

func (s *Service) checkLimits(oldText, newText string) error {
	if err := textdiff.CheckLimit(oldText, newText, s.maxLines); err != nil {
		return err
	}
	return textdiff.CheckCells(oldText, newText, s.maxCells)
}

func refName(prefix, ref string) string {
	if ref == "" {
		return "/dev/null"
	}
	return prefix + "/" + ref
}
