package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	logpkg "wisefido-risk/common/logger"
	"wisefido-risk/internal/export"
	"wisefido-risk/internal/models"
	"wisefido-risk/internal/risk"
	"wisefido-risk/internal/textdiff"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	logLevel string
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "riskctl",
		Short:        "Offline tools for risk scores and page changelogs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logpkg.NewLogger(opts.logLevel, "console", "riskctl")
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newDiffCmd(opts),
		newClassifyCmd(opts),
		newRosterCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}

func newDiffCmd(opts *rootOptions) *cobra.Command {
	var (
		unified      bool
		contextLines int
		maxLines     int
		xlsxOut      string
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Line diff of two text files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			newText, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			if err := textdiff.CheckLimit(oldText, newText, maxLines); err != nil {
				return err
			}

			lines := textdiff.DiffLines(oldText, newText)
			stats := textdiff.DiffStats(lines)
			opts.logger.Debug("Computed diff",
				zap.Int("added", stats.Added),
				zap.Int("removed", stats.Removed),
				zap.Int("unchanged", stats.Unchanged),
			)

			if xlsxOut != "" {
				data, err := export.GenerateChangelogSheet(lines)
				if err != nil {
					return err
				}
				return os.WriteFile(xlsxOut, data, 0o644)
			}

			out := cmd.OutOrStdout()
			if unified {
				patch, err := textdiff.Unified(args[0], args[1], lines, contextLines)
				if err != nil {
					return err
				}
				_, err = out.Write(patch)
				return err
			}

			for _, l := range lines {
				fmt.Fprintf(out, "%s %s\n", linePrefix(l.Type), l.Content)
			}
			fmt.Fprintf(out, "\n%d added, %d removed, %d unchanged\n", stats.Added, stats.Removed, stats.Unchanged)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "print a unified patch")
	cmd.Flags().IntVarP(&contextLines, "context", "U", textdiff.DefaultContextLines, "context lines for --unified")
	cmd.Flags().IntVar(&maxLines, "max-lines", textdiff.DefaultMaxLines, "maximum lines per side (0 = unlimited)")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write the changelog to an xlsx file instead")
	return cmd
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var (
		previous  float64
		trend     string
		threshold float64
		minutes   int
	)

	cmd := &cobra.Command{
		Use:   "classify SCORE",
		Short: "Classify a single risk score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := risk.ScoreInputFromJSON(json.RawMessage(args[0]))
			if !risk.IsValidRiskScore(input) {
				return fmt.Errorf("%s: %q", risk.ErrMsgRiskScoreRequired, args[0])
			}
			score, _ := risk.ScoreValue(input)

			t := models.Trend(trend)
			if cmd.Flags().Changed("previous") {
				t = risk.CalculateTrendDirectionWithThreshold(previous, score, threshold)
			}

			c := risk.Classify(score, t)
			if cmd.Flags().Changed("minutes") {
				c.LastUpdated = risk.FormatLastUpdated(minutes)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		},
	}

	cmd.Flags().Float64Var(&previous, "previous", 0, "previous score, used to derive the trend")
	cmd.Flags().StringVar(&trend, "trend", "", "explicit trend (up, down, stable)")
	cmd.Flags().Float64Var(&threshold, "threshold", risk.DefaultTrendThreshold, "trend threshold")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "minutes since last update")
	return cmd
}

func newRosterCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "roster FILE.json",
		Short: "Export a JSON array of patients as an xlsx risk roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var records []json.RawMessage
			if err := json.Unmarshal([]byte(raw), &records); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			patients := make([]models.Patient, 0, len(records))
			skipped := 0
			for i, rec := range records {
				draft, err := risk.ParsePatientDraft(rec)
				if err == nil {
					if result := risk.ValidatePatientData(draft); !result.Valid {
						err = fmt.Errorf("%v", result.Errors)
					}
				}
				var p models.Patient
				if err == nil {
					err = json.Unmarshal(rec, &p)
				}
				if err != nil {
					skipped++
					opts.logger.Warn("Skipping invalid patient record", zap.Int("index", i), zap.Error(err))
					continue
				}
				patients = append(patients, p)
			}

			data, err := export.GenerateRiskRoster(patients)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d patients to %s (%d skipped)\n", len(patients), output, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "risk-roster.xlsx", "output xlsx path")
	return cmd
}

// readInput 读取文件，"-" 表示标准输入
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func linePrefix(t textdiff.LineType) string {
	switch t {
	case textdiff.LineAdded:
		return "+"
	case textdiff.LineRemoved:
		return "-"
	default:
		return " "
	}
}
