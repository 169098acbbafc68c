package export

import (
	"bytes"
	"fmt"

	"wisefido-risk/internal/models"
	"wisefido-risk/internal/risk"
	"wisefido-risk/internal/textdiff"

	"github.com/xuri/excelize/v2"
)

const (
	RosterSheet    = "Risk Roster"
	ChangelogSheet = "Changelog"
)

// RosterHeader 风险名册表头
var RosterHeader = []string{
	"Patient ID",
	"Risk Type",
	"Risk Score",
	"Risk Level",
	"Low",
	"High",
	"Trend",
	"Priority",
	"Last Updated",
	"Total Contribution",
}

var rosterColumnWidths = []float64{15, 20, 12, 12, 10, 10, 10, 12, 14, 18}

// ChangelogHeader 变更记录表头；Line 为 DiffLine 序号（从 1 开始）
var ChangelogHeader = []string{"Line", "Type", "Content"}

// GenerateRiskRoster 生成风险名册（按 SortByRiskPriority 排序）
func GenerateRiskRoster(patients []models.Patient) ([]byte, error) {
	sorted := risk.SortByRiskPriority(patients)
	rows := make([][]any, 0, len(sorted))
	for _, p := range sorted {
		card := risk.BuildCard(p)
		rows = append(rows, []any{
			p.ID,
			p.RiskType,
			card.RiskScore,
			string(card.RiskLevel),
			card.Bounds.Low,
			card.Bounds.High,
			string(card.Trend),
			string(card.Priority),
			card.LastUpdated,
			card.TotalContribution,
		})
	}
	return generateSheet(RosterSheet, RosterHeader, rosterColumnWidths, rows)
}

// GenerateChangelogSheet 生成变更记录表（每个 DiffLine 一行）
//
// 单元格最多 excelize.TotalCellChars 个 UTF-16 单元，超长内容拆成多行，Line 相同，
// 按顺序拼接即为原内容。XML 不允许的字符按 sanitizeCellText 替换，精确内容以 JSON 接口为准。
func GenerateChangelogSheet(lines []textdiff.DiffLine) ([]byte, error) {
	rows := make([][]any, 0, len(lines))
	for i, l := range lines {
		for _, part := range splitCellText(sanitizeCellText(l.Content), excelize.TotalCellChars) {
			rows = append(rows, []any{i + 1, string(l.Type), part})
		}
	}
	return generateSheet(ChangelogSheet, ChangelogHeader, []float64{8, 10, 100}, rows)
}

// generateSheet 单工作表 xlsx：加粗表头、列宽、冻结首行
func generateSheet(sheetName string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	// Note: WriteTo 之前不能 Close

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}
