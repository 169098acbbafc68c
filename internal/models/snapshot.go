package models

import "time"

// Snapshot 页面存档快照
type Snapshot struct {
	SnapshotID string    `json:"snapshot_id"`
	PageKey    string    `json:"page_key"`
	Content    string    `json:"content"`
	CapturedAt time.Time `json:"captured_at"`
}
