package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/ui/theme"
)

// QuestionCard renders a generated question for the terminal.
type QuestionCard struct {
	Question   question.GeneratedQuestion
	ShowAnswer bool
	Width      int
}

// View renders the question, its options and, when ShowAnswer is set, the
// answer, the explanation and the pipeline metadata.
func (c QuestionCard) View() string {
	q := c.Question
	width := c.Width
	if width <= 0 {
		width = 80
	}
	inner := width - 4

	var b strings.Builder

	heading := fmt.Sprintf("%s · %s", q.Topic, q.Difficulty)
	if q.Metadata.Fallback {
		heading += " · fallback"
	}
	b.WriteString(theme.Subtitle.Render(heading))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(inner).Render(q.Text))
	b.WriteString("\n\n")

	letters := question.Letters()
	for i, opt := range q.Options {
		if i >= len(letters) {
			break
		}
		line := fmt.Sprintf("%s) %s", letters[i], opt)
		style := theme.Body
		if c.ShowAnswer && letters[i] == q.CorrectAnswer {
			style = theme.Correct
			line += "  ✓"
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if c.ShowAnswer {
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("Answer: " + string(q.CorrectAnswer)))
		if q.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Width(inner).Render(q.Explanation))
		}
		b.WriteString("\n\n")
		b.WriteString(c.metadata())
	}

	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (c QuestionCard) metadata() string {
	m := c.Question.Metadata
	rows := [][2]string{
		{"Generator", m.GenerationModel},
		{"Refiner", orDash(m.RefinementModel)},
		{"Refined", fmt.Sprintf("%v", m.RefinementApplied)},
		{"Validated", fmt.Sprintf("%v", m.ValidationPassed)},
		{"Quality", fmt.Sprintf("%d/100", m.QualityScore)},
		{"Attempts", fmt.Sprintf("%d", m.Attempts)},
		{"Time", m.ProcessingTime.Round(time.Millisecond).String()},
	}
	if len(m.Notes) > 0 {
		rows = append(rows, [2]string{"Notes", strings.Join(m.Notes, ", ")})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, theme.Label.Render(r[0])+theme.Body.Render(r[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
