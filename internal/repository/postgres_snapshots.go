package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wisefido-risk/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostgresSnapshotsRepository 页面快照 Repository 实现（表：page_snapshots）
type PostgresSnapshotsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresSnapshotsRepository 创建快照 Repository
func NewPostgresSnapshotsRepository(db *sql.DB, logger *zap.Logger) *PostgresSnapshotsRepository {
	return &PostgresSnapshotsRepository{db: db, logger: logger}
}

var _ SnapshotsRepository = (*PostgresSnapshotsRepository)(nil)

// GetSnapshot 按 ID 查询
func (r *PostgresSnapshotsRepository) GetSnapshot(ctx context.Context, snapshotID string) (*models.Snapshot, error) {
	if snapshotID == "" {
		return nil, fmt.Errorf("snapshot_id is required")
	}

	query := `
		SELECT snapshot_id::text, page_key, content, captured_at
		FROM page_snapshots
		WHERE snapshot_id = $1
	`
	return r.queryOne(ctx, query, snapshotID)
}

// LatestSnapshot 页面最新一条快照
func (r *PostgresSnapshotsRepository) LatestSnapshot(ctx context.Context, pageKey string) (*models.Snapshot, error) {
	if pageKey == "" {
		return nil, fmt.Errorf("page_key is required")
	}

	query := `
		SELECT snapshot_id::text, page_key, content, captured_at
		FROM page_snapshots
		WHERE page_key = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, pageKey)
}

// ListSnapshots 按时间倒序列出快照（limit <= 0 时默认 20）
func (r *PostgresSnapshotsRepository) ListSnapshots(ctx context.Context, pageKey string, limit int) ([]models.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT snapshot_id::text, page_key, content, captured_at
		FROM page_snapshots
		WHERE page_key = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pageKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []models.Snapshot{}
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(&s.SnapshotID, &s.PageKey, &s.Content, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// SaveSnapshot 新增快照，返回 snapshot_id
func (r *PostgresSnapshotsRepository) SaveSnapshot(ctx context.Context, pageKey, content string) (string, error) {
	if pageKey == "" {
		return "", fmt.Errorf("page_key is required")
	}

	snapshotID := uuid.NewString()
	query := `
		INSERT INTO page_snapshots (snapshot_id, page_key, content, captured_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := r.db.ExecContext(ctx, query, snapshotID, pageKey, content); err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	r.logger.Info("Saved page snapshot",
		zap.String("snapshot_id", snapshotID),
		zap.String("page_key", pageKey),
		zap.Int("content_bytes", len(content)),
	)
	return snapshotID, nil
}

func (r *PostgresSnapshotsRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Snapshot, error) {
	var s models.Snapshot
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.SnapshotID, &s.PageKey, &s.Content, &s.CapturedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return &s, nil
}
