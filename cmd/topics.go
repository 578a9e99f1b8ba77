package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/physiq/internal/topics"
	"github.com/abhisek/physiq/internal/ui/components"
	"github.com/abhisek/physiq/internal/ui/theme"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the curriculum topics (optionally filtered by theme)",
	RunE: func(cmd *cobra.Command, args []string) error {
		themeFilter, _ := cmd.Flags().GetString("theme")
		out := cmd.OutOrStdout()

		themes := topics.AllThemes()
		if themeFilter != "" {
			t := topics.Theme(themeFilter)
			if len(topics.ByTheme(t)) == 0 {
				t = topics.Theme(strings.ToUpper(themeFilter))
			}
			if len(topics.ByTheme(t)) == 0 {
				return fmt.Errorf("no topics found for theme %q", themeFilter)
			}
			themes = []topics.Theme{t}
		}

		var n int
		for _, th := range themes {
			ts := topics.ByTheme(th)
			rows := make([][]string, 0, len(ts))
			for _, t := range ts {
				level := "SL/HL"
				if t.HigherLevelOnly {
					level = "HL"
				}
				rows = append(rows, []string{t.ID, t.Name, level})
			}
			n += len(ts)

			lipgloss.Fprintln(out, theme.Subtitle.Render(topics.ThemeDisplayName(th)))
			lipgloss.Fprintln(out, components.Table([]string{"ID", "Name", "Level"}, rows))
		}

		lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d topics", n)))
		return nil
	},
}

func init() {
	topicsCmd.Flags().String("theme", "", "Filter by theme (A-E or options)")
}
