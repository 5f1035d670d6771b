package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/seoaudit/internal/report"
)

// NewPDFCmd creates the pdf command.
func NewPDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <job-id>",
		Short: "Download the PDF report of a completed audit",
		Long: `Pdf downloads the report rendered by the audit API for a completed job
and saves it as audit_<id>.pdf.`,
		Args: cobra.ExactArgs(1),
		RunE: runPDFCmd,
	}

	cmd.Flags().StringP("dir", "d", "", "Target directory (default: report_dir from config)")

	return cmd
}

func runPDFCmd(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.ReportDir
	}
	a, err := newApplication(cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdown(cmd, a)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	path, err := report.SavePDF(ctx, a.Orch, args[0], dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
