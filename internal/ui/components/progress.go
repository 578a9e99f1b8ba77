package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/physiq/internal/ui/theme"
)

// UsageBar displays consumption of a capped quantity as a horizontal bar.
type UsageBar struct {
	Label string
	Used  float64
	Limit float64 // <= 0 means unlimited
	Width int
}

// Fraction returns Used/Limit clamped to [0, 1], or 0 when unlimited.
func (b UsageBar) Fraction() float64 {
	if b.Limit <= 0 {
		return 0
	}
	f := b.Used / b.Limit
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// View renders the bar followed by "used/limit".
func (b UsageBar) View() string {
	var result string

	if b.Label != "" {
		result += theme.Label.Render(b.Label) + " "
	}

	if b.Limit <= 0 {
		return result + theme.Hint.Render(fmt.Sprintf("%s (unlimited)", formatAmount(b.Used)))
	}

	barWidth := b.Width - lipgloss.Width(result)
	if barWidth < 4 {
		barWidth = 4
	}

	frac := b.Fraction()
	filled := int(float64(barWidth) * frac)
	empty := barWidth - filled

	fill := theme.ProgressFilled
	if frac >= 1 {
		fill = theme.ProgressFull
	}
	result += fill.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %s/%s", formatAmount(b.Used), formatAmount(b.Limit)))

	return result
}

// formatAmount prints integers without decimals and costs with four.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4f", v)
}
