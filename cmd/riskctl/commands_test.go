package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"wisefido-risk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiffCmd(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "a\nb\nc\n")
	newPath := writeFile(t, dir, "new.txt", "a\nx\nc\n")

	out, err := runCmd(t, "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "  a\n- b\n+ x\n  c\n")
	assert.Contains(t, out, "1 added, 1 removed, 2 unchanged")

	out, err = runCmd(t, "diff", "--unified", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "@@ -1,3 +1,3 @@")
}

func TestDiffCmd_MaxLines(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "1\n2\n3\n")
	newPath := writeFile(t, dir, "new.txt", "1\n")

	_, err := runCmd(t, "diff", "--max-lines", "2", oldPath, newPath)
	assert.Error(t, err)
}

func TestDiffCmd_XLSX(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "a\n")
	newPath := writeFile(t, dir, "new.txt", "b\n")
	outPath := filepath.Join(dir, "changelog.xlsx")

	_, err := runCmd(t, "diff", "--xlsx", outPath, oldPath, newPath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Changelog")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestClassifyCmd(t *testing.T) {
	out, err := runCmd(t, "classify", "75", "--previous", "60", "--minutes", "42")
	require.NoError(t, err)

	var c models.Classification
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, models.RiskLevelHigh, c.RiskLevel)
	assert.Equal(t, models.TrendUp, c.Trend)
	assert.Equal(t, models.PriorityCritical, c.Priority)
	assert.Equal(t, "~42m", c.LastUpdated)

	_, err = runCmd(t, "classify", "abc")
	assert.Error(t, err)
	_, err = runCmd(t, "classify", "150")
	assert.Error(t, err)
}

func TestRosterCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "patients.json", `[
		{"id":"P-1","riskScore":82,"riskLevel":"HIGH","riskType":"Sepsis","trend":"up","lastUpdatedMinutes":5,
		 "riskFactors":[{"name":"Lactate","icon":"flask","contribution":0.35}]},
		{"id":"P-2","riskScore":"n/a","riskFactors":[]}
	]`)
	outPath := filepath.Join(dir, "roster.xlsx")

	out, err := runCmd(t, "roster", input, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 patients")
	assert.Contains(t, out, "(1 skipped)")

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Risk Roster")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P-1", rows[1][0])
}

func TestPrintPatientCheck(t *testing.T) {
	var out bytes.Buffer
	printPatientCheck(&out, []models.Patient{
		{ID: "P-1", RiskScore: 72, RiskLevel: models.RiskLevelMedium, RiskFactors: []models.RiskFactor{{Name: "BP", Contribution: 0.2}}},
		{ID: "P-2", RiskScore: 20, RiskLevel: models.RiskLevelLow},
	})

	text := out.String()
	assert.Contains(t, text, "P-1")
	assert.Contains(t, text, "At least one risk factor is required")
	assert.Contains(t, text, "2 patients, 1 level mismatches, 1 invalid")
}
