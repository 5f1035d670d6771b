package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Audit a page and print the result",
		Long: `Audit submits the page to the audit API, waits for the job to finish and
prints the normalized result.

A URL without a scheme is audited over https.

Examples:
  # Audit a page and print JSON
  seoaudit audit example.com

  # Print a Markdown report and save the PDF next to it
  seoaudit audit example.com --format markdown --output report.md --pdf

  # Try the tool without a backend
  seoaudit audit example.com --offline`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCmd,
	}

	cmd.Flags().StringP("format", "f", "json", "Output format: json or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().Bool("include-perf", false, "Ask the backend to collect performance metrics")
	cmd.Flags().Bool("pdf", false, "Also download the PDF report")
	cmd.Flags().String("pdf-dir", "", "Directory for the PDF report (default: report_dir from config)")

	return cmd
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	includePerf, err := cmd.Flags().GetBool("include-perf")
	if err != nil {
		return err
	}
	savePDF, err := cmd.Flags().GetBool("pdf")
	if err != nil {
		return err
	}
	pdfDir, err := cmd.Flags().GetString("pdf-dir")
	if err != nil {
		return err
	}

	// Fail on a bad format before spending an audit on it.
	if _, err := report.NewWriter(format, io.Discard); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApplication(cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdown(cmd, a)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fmt.Fprintf(cmd.ErrOrStderr(), "Auditing %s...\n", args[0])
	res, err := a.Orch.RunAudit(ctx, &model.AuditRequest{URL: args[0], IncludePerformance: includePerf})
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	w, err := report.NewWriter(format, out)
	if err != nil {
		return err
	}
	if err := w.Write(res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if savePDF {
		if pdfDir == "" {
			pdfDir = cfg.ReportDir
		}
		path, err := report.SavePDF(ctx, a.Orch, res.JobID, pdfDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "PDF saved to %s\n", path)
	}
	return nil
}
