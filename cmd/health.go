package cmd

import (
	"fmt"
	"sort"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/physiq/internal/ui/components"
	"github.com/abhisek/physiq/internal/ui/theme"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the generation and refinement providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		h := a.Pipeline.HealthCheck(cmd.Context())
		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, h)
		}

		status := string(h.Status)
		lipgloss.Fprintln(out, theme.Title.Render("Pipeline: ")+theme.ForStatus(status).Render(status))

		names := make([]string, 0, len(h.Services))
		for name := range h.Services {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, string(h.Services[name])})
		}
		lipgloss.Fprintln(out, components.Table([]string{"Service", "Status"}, rows))

		if len(h.Indicators) > 0 {
			rows = rows[:0]
			for _, ind := range h.Indicators {
				rows = append(rows, []string{ind.Name, string(ind.Status), ind.Detail})
			}
			lipgloss.Fprintln(out, components.Table([]string{"Indicator", "Status", "Detail"}, rows))
		}

		for _, d := range h.Details {
			lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("• %s", d)))
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().Bool("json", false, "Print the health report as JSON")
}
