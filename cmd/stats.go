package cmd

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/physiq/internal/store"
	"github.com/abhisek/physiq/internal/ui/components"
	"github.com/abhisek/physiq/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generation statistics per topic and recent errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()

		summary, err := repo.GenerationSummary(ctx)
		if err != nil {
			return fmt.Errorf("query generation summary: %w", err)
		}
		errCounts, err := repo.ErrorCounts(ctx, time.Now().Add(-since))
		if err != nil {
			return fmt.Errorf("query error counts: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, struct {
				Topics []store.TopicSummary   `json:"topics"`
				Errors []store.ErrorKindCount `json:"errors"`
			}{summary, errCounts})
		}

		if len(summary) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No generations recorded yet."))
			return nil
		}

		var total, ok, fallbacks int
		rows := make([][]string, 0, len(summary)+1)
		for _, t := range summary {
			rows = append(rows, []string{
				t.Topic,
				fmt.Sprintf("%d", t.Total),
				fmt.Sprintf("%.0f%%", percent(t.Successful, t.Total)),
				fmt.Sprintf("%d", t.Fallbacks),
				fmt.Sprintf("%.1f", t.AvgQuality),
				fmt.Sprintf("%dms", t.AvgDurationMs),
			})
			total += t.Total
			ok += t.Successful
			fallbacks += t.Fallbacks
		}
		rows = append(rows, []string{
			"TOTAL", fmt.Sprintf("%d", total), fmt.Sprintf("%.0f%%", percent(ok, total)),
			fmt.Sprintf("%d", fallbacks), "", "",
		})

		lipgloss.Fprintln(out, theme.Subtitle.Render("Generations by Topic"))
		lipgloss.Fprintln(out, components.Table(
			[]string{"Topic", "Total", "Success", "Fallbacks", "Avg Quality", "Avg Time"}, rows))

		lipgloss.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("Errors (last %s)", since)))
		if len(errCounts) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("none"))
			return nil
		}
		rows = rows[:0]
		for _, c := range errCounts {
			rows = append(rows, []string{c.Kind, fmt.Sprintf("%d", c.Count)})
		}
		lipgloss.Fprintln(out, components.Table([]string{"Kind", "Count"}, rows))
		return nil
	},
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func init() {
	statsCmd.Flags().Duration("since", 24*time.Hour, "Error window")
	statsCmd.Flags().Bool("json", false, "Print statistics as JSON")
}
