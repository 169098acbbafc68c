package httpapi

import (
	"context"
	"errors"
	"net/http"

	"wisefido-risk/internal/changelog"
	"wisefido-risk/internal/export"
	"wisefido-risk/internal/repository"
	"wisefido-risk/internal/textdiff"

	"go.uber.org/zap"
)

// ChangelogService *changelog.Service 的接口
type ChangelogService interface {
	Compare(oldRef, newRef, oldText, newText string) (*changelog.Changelog, error)
	CompareSnapshots(ctx context.Context, oldID, newID string) (*changelog.Changelog, error)
	CompareLive(ctx context.Context, pageKey string) (*changelog.Changelog, error)
}

// ChangelogHandler 变更记录 API
type ChangelogHandler struct {
	svc    ChangelogService
	logger *zap.Logger
}

func NewChangelogHandler(svc ChangelogService, logger *zap.Logger) *ChangelogHandler {
	return &ChangelogHandler{svc: svc, logger: logger}
}

// DiffRequest POST /api/v1/changelog/diff
type DiffRequest struct {
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
	Unified bool   `json:"unified,omitempty"`
	Inline  bool   `json:"inline,omitempty"`
}

// DiffResponse diff 结果；Unified / Pairs 按请求返回
type DiffResponse struct {
	Lines   []textdiff.DiffLine `json:"lines"`
	Stats   textdiff.Stats      `json:"stats"`
	Unified string              `json:"unified,omitempty"`
	Pairs   []textdiff.LinePair `json:"pairs,omitempty"`
}

// Diff 对比两段文本
func (h *ChangelogHandler) Diff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := readBodyJSON(w, r, maxBodyBytes, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	cl, err := h.svc.Compare("old", "new", req.OldText, req.NewText)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := DiffResponse{Lines: cl.Lines, Stats: cl.Stats}
	if req.Unified {
		resp.Unified = cl.Unified
	}
	if req.Inline {
		resp.Pairs = textdiff.ModifiedPairs(cl.Lines)
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// CompareSnapshots GET /api/v1/changelog/snapshots
// - old & new: 两个 snapshot_id
// - page_key: 最新存档 vs 实时页面
// - format=xlsx: 以 Excel 下载
func (h *ChangelogHandler) CompareSnapshots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	oldID, newID, pageKey := q.Get("old"), q.Get("new"), q.Get("page_key")

	var (
		cl  *changelog.Changelog
		err error
	)
	switch {
	case oldID != "" && newID != "":
		cl, err = h.svc.CompareSnapshots(r.Context(), oldID, newID)
	case pageKey != "":
		cl, err = h.svc.CompareLive(r.Context(), pageKey)
	default:
		writeJSON(w, http.StatusBadRequest, Fail("old and new, or page_key, are required"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	if q.Get("format") == "xlsx" {
		data, err := export.GenerateChangelogSheet(cl.Lines)
		if err != nil {
			h.logger.Error("Failed to generate changelog sheet", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to generate changelog sheet"))
			return
		}
		writeXLSX(w, "changelog-"+cl.ID+".xlsx", data)
		return
	}

	writeJSON(w, http.StatusOK, Ok(cl))
}

func (h *ChangelogHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, textdiff.ErrTooManyLines):
		writeJSON(w, http.StatusRequestEntityTooLarge, Fail(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail("snapshot not found"))
	default:
		h.logger.Error("Failed to build changelog", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to build changelog"))
	}
}
