package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/pipeline"
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/ui/components"
	"github.com/abhisek/physiq/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate IB physics questions",
	Long: `Generate one or more multiple-choice questions.

With a single topic and --count 1 the pipeline runs once. Several topics or a
larger count run as a batch, three questions at a time.`,
	Example: `  physiq generate --topic kinematics
  physiq generate --topic waves --topic fields --difficulty higher
  physiq generate --topic thermal-energy --count 5 --json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceP("topic", "t", nil, "Topic ID (repeatable, see 'physiq topics')")
	generateCmd.Flags().StringP("difficulty", "d", string(question.DifficultyStandard), "Difficulty: standard or higher")
	generateCmd.Flags().String("type", string(question.TypeMultipleChoice), "Question type: multiple-choice or long-answer")
	generateCmd.Flags().IntP("count", "n", 1, "Questions per topic")
	generateCmd.Flags().Bool("json", false, "Print questions as JSON")
	generateCmd.Flags().Bool("hide-answer", false, "Do not reveal the answer and explanation")
	_ = generateCmd.MarkFlagRequired("topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topicIDs, _ := cmd.Flags().GetStringSlice("topic")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	qtype, _ := cmd.Flags().GetString("type")
	count, _ := cmd.Flags().GetInt("count")
	asJSON, _ := cmd.Flags().GetBool("json")
	hideAnswer, _ := cmd.Flags().GetBool("hide-answer")

	if count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	reqs := make([]pipeline.Request, 0, len(topicIDs)*count)
	for _, id := range topicIDs {
		for range count {
			reqs = append(reqs, pipeline.Request{
				Topic:      strings.TrimSpace(id),
				Difficulty: question.Difficulty(strings.ToLower(difficulty)),
				Type:       question.Type(strings.ToLower(qtype)),
			})
		}
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var qs []*question.GeneratedQuestion
	if len(reqs) == 1 {
		q, err := a.Pipeline.GenerateQuestion(ctx, reqs[0])
		if err != nil {
			return describeFailure(err)
		}
		qs = []*question.GeneratedQuestion{q}
	} else {
		qs, err = a.Pipeline.GenerateMultipleQuestions(ctx, reqs)
		if err != nil {
			return describeFailure(err)
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, qs)
	}

	for i, q := range qs {
		if len(qs) > 1 {
			lipgloss.Fprintln(out, theme.Title.Render(fmt.Sprintf("Question %d/%d", i+1, len(qs))))
		}
		lipgloss.Fprintln(out, components.QuestionCard{Question: *q, ShowAnswer: !hideAnswer}.View())
	}
	if len(qs) < len(reqs) {
		lipgloss.Fprintln(out, theme.Caution.Render(
			fmt.Sprintf("%d of %d questions failed; run 'physiq stats' for details", len(reqs)-len(qs), len(reqs))))
	}
	return nil
}

// describeFailure adds the failure code and retry hint to pipeline errors.
func describeFailure(err error) error {
	var fe *failure.Error
	if !errors.As(err, &fe) {
		return err
	}
	hint := "not retryable"
	if fe.Retryable {
		hint = "retryable"
	}
	return fmt.Errorf("%w [%s, %s]", err, fe.Code, hint)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
