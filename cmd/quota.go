package cmd

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/physiq/internal/ratelimit"
	"github.com/abhisek/physiq/internal/ui/components"
	"github.com/abhisek/physiq/internal/ui/theme"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show per-provider request, token and cost usage",
	Long: `Show usage against the configured limits for each provider.

Usage is tracked in memory unless PHYSIQ_REDIS_URL points at a shared ledger,
so without Redis this only reflects the current process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var statuses []ratelimit.QuotaStatus
		for _, p := range a.Limiter.Providers() {
			st, err := a.Limiter.Status(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("quota status for %s: %w", p, err)
			}
			statuses = append(statuses, st)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, statuses)
		}

		const width = 60
		for _, st := range statuses {
			lipgloss.Fprintln(out, theme.Subtitle.Render(st.Provider))
			bars := []components.UsageBar{
				{Label: "req/min", Used: float64(st.Requests.Minute), Limit: float64(st.Requests.MinuteLimit), Width: width},
				{Label: "req/day", Used: float64(st.Requests.Day), Limit: float64(st.Requests.DayLimit), Width: width},
				{Label: "tokens/min", Used: float64(st.Tokens.Minute), Limit: float64(st.Tokens.MinuteLimit), Width: width},
				{Label: "tokens/day", Used: float64(st.Tokens.Day), Limit: float64(st.Tokens.DayLimit), Width: width},
				{Label: "cost/day $", Used: st.Cost, Limit: st.CostLimit, Width: width},
			}
			for _, b := range bars {
				lipgloss.Fprintln(out, "  "+b.View())
			}
			if st.InFlight > 0 {
				lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("  %d call(s) in flight", st.InFlight)))
			}
			lipgloss.Fprintln(out, theme.Hint.Render("  window resets "+st.NextReset.Local().Format(time.DateTime)))
		}
		return nil
	},
}

func init() {
	quotaCmd.Flags().Bool("json", false, "Print quota status as JSON")
}
