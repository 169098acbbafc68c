package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"wisefido-risk/common/database"
	"wisefido-risk/internal/config"
	"wisefido-risk/internal/models"
	"wisefido-risk/internal/repository"
	"wisefido-risk/internal/risk"

	"github.com/spf13/cobra"
)

// newCheckCmd 直连数据库检查租户患者记录（DB_* 环境变量）
func newCheckCmd(opts *rootOptions) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check stored patient records of a tenant against the classifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if tenantID == "" {
				tenantID = cfg.Risk.TenantID
			}
			if tenantID == "" {
				return fmt.Errorf("tenant_id is required (--tenant or TENANT_ID)")
			}

			db, err := database.NewPostgresDB(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			patients, err := repository.NewPostgresPatientsRepository(db, opts.logger).ListPatients(ctx, tenantID)
			if err != nil {
				return err
			}

			printPatientCheck(cmd.OutOrStdout(), patients)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (defaults to TENANT_ID)")
	return cmd
}

// printPatientCheck 每位患者一行：存储等级 vs 推导等级、校验结果
func printPatientCheck(out io.Writer, patients []models.Patient) {
	fmt.Fprintf(out, "%-20s %-8s %-8s %-8s %-6s %s\n",
		"patient_id", "score", "stored", "derived", "match", "errors")
	fmt.Fprintln(out, strings.Repeat("-", 80))

	mismatched, invalid := 0, 0
	for _, p := range patients {
		derived := risk.GetRiskLevel(p.RiskScore)
		match := risk.IsLevelConsistent(p)
		if !match {
			mismatched++
		}
		result := risk.ValidatePatientData(risk.DraftFromPatient(p))
		if !result.Valid {
			invalid++
		}

		fmt.Fprintf(out, "%-20s %-8g %-8s %-8s %-6t %s\n",
			p.ID, p.RiskScore, p.RiskLevel, derived, match, strings.Join(result.Errors, "; "))
	}

	fmt.Fprintf(out, "\n%d patients, %d level mismatches, %d invalid\n", len(patients), mismatched, invalid)
}
