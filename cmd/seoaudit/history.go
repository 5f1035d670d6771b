package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/seoaudit/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List recorded audits",
		Long: `History lists audits recorded in the local history database, newest first.
With a URL only audits of that page are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	var site string
	if len(args) == 1 {
		site = args[0]
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

	entries, err := a.Orch.ListHistory(cmd.Context(), site, limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	printHistory(out, entries)
	return nil
}

func printHistory(out io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No audits recorded yet.")
		fmt.Fprintln(out, "\nUse 'seoaudit audit <url>' to audit a page.")
		return
	}

	fmt.Fprintf(out, "  %-8s  %-20s  %7s  %4s  %4s  %4s  %s\n", "Job", "Received", "Overall", "Tech", "Cont", "AI", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 78))
	for _, e := range entries {
		url := e.FinalURL
		if url == "" {
			url = e.URL
		}
		fmt.Fprintf(out, "  %-8s  %-20s  %7d  %4d  %4d  %4d  %s\n",
			shortJob(e.JobID), e.ReceivedAt.Local().Format("2006-01-02 15:04:05"),
			e.Scores.Overall, e.Scores.Technical, e.Scores.Content, e.Scores.AI, url)
	}
}

func shortJob(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
