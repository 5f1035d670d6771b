package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/seoaudit/internal/compare"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [base-job-id head-job-id]",
		Short: "Compare two recorded audits",
		Long: `Compare shows how scores and checks changed between two recorded audits.

Examples:
  # Compare two audits by job id
  seoaudit compare 3f2a9c1e-... 8b1d0f4a-...

  # Compare the two latest audits of a page
  seoaudit compare --url example.com`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("url", "u", "", "Compare the two latest audits of this page")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("all", "a", false, "Also list unchanged checks")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	site, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	if (site == "") == (len(args) != 2) {
		return errors.New("give either two job ids or --url")
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

	var delta *compare.ResultDelta
	if site != "" {
		delta, err = a.Orch.CompareLatest(cmd.Context(), site)
	} else {
		delta, err = a.Orch.Compare(cmd.Context(), args[0], args[1])
	}
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(delta)
	}
	printDelta(out, delta, all)
	return nil
}

func printDelta(out io.Writer, d *compare.ResultDelta, all bool) {
	fmt.Fprintf(out, "Comparing %s -> %s\n", shortJob(d.BaseJobID), shortJob(d.HeadJobID))
	if d.URL != "" {
		fmt.Fprintf(out, "URL: %s\n", d.URL)
	}
	if !d.SameSite {
		fmt.Fprintln(out, "Warning: the audits are of different sites")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  %-10s  %5s  %5s  %6s\n", "Score", "Base", "Head", "Delta")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 32))
	rows := []struct {
		name       string
		base, head int
		delta      int
	}{
		{"Overall", d.BaseScores.Overall, d.HeadScores.Overall, d.Scores.Overall},
		{"Technical", d.BaseScores.Technical, d.HeadScores.Technical, d.Scores.Technical},
		{"Content", d.BaseScores.Content, d.HeadScores.Content, d.Scores.Content},
		{"AI", d.BaseScores.AI, d.HeadScores.AI, d.Scores.AI},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-10s  %5d  %5d  %+6d\n", r.name, r.base, r.head, r.delta)
	}

	for _, c := range d.CapsAdded {
		fmt.Fprintf(out, "\n  + cap applied: %s", c)
	}
	for _, c := range d.CapsRemoved {
		fmt.Fprintf(out, "\n  - cap lifted: %s", c)
	}
	if len(d.CapsAdded)+len(d.CapsRemoved) > 0 {
		fmt.Fprintln(out)
	}

	if len(d.Changed()) == 0 {
		fmt.Fprintln(out, "\nNo changes.")
		return
	}

	fmt.Fprintln(out, "\nChecks:")
	for _, c := range d.Checks {
		if c.Kind == compare.ChangeUnchanged && !all {
			continue
		}
		fmt.Fprintf(out, "  %-10s %-28s %-8s -> %-8s %+6.1f\n",
			c.Kind, c.ID, orNone(string(c.BaseStatus)), orNone(string(c.HeadStatus)), c.PointsDelta)
		for _, ch := range c.EvidenceDiff {
			sign := "+"
			if ch.Type == "removed" {
				sign = "-"
			}
			fmt.Fprintf(out, "      %s %s\n", sign, ch.Content)
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
