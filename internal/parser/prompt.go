package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/topics"
)

// RefinementSystemPrompt frames the refinement model.
const RefinementSystemPrompt = `You are an expert IB Physics teacher. Review multiple-choice questions for physics accuracy, clarity and alignment with the IB Diploma syllabus. Keep exactly four options and exactly one correct answer.`

// generationInstruction is the instruction the fine-tuned model was trained on.
const generationInstruction = "Generate an IB Physics Paper 1 style multiple-choice question."

type instructionPrompt struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// GenerationPrompt builds the instruction/input/output document the
// generation model expects. The output field is left empty for the model
// to complete.
func GenerationPrompt(t topics.Topic, d question.Difficulty) string {
	input := "Topic: " + t.Name
	if d == question.DifficultyHigher {
		input += "\nLevel: HL"
	}
	b, _ := json.Marshal(instructionPrompt{
		Instruction: generationInstruction,
		Input:       input,
	})
	return string(b)
}

// RefinementPrompt renders raw as the natural-language review request sent
// to the refinement model.
func RefinementPrompt(raw question.RawQuestion, t topics.Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please review and refine this IB Physics multiple-choice question for accuracy and quality.\n\n")
	fmt.Fprintf(&b, "TOPIC: %s\n", t.Name)
	if t.Context != "" {
		fmt.Fprintf(&b, "TOPIC CONTEXT: %s\n", t.Context)
	}
	fmt.Fprintf(&b, "QUESTION: %s\n\n", raw.Text)
	b.WriteString("OPTIONS:\n")
	for i, opt := range raw.Options {
		if i >= question.OptionCount {
			break
		}
		fmt.Fprintf(&b, "%s) %s\n", question.Letters()[i], opt)
	}
	fmt.Fprintf(&b, "\nSUGGESTED ANSWER: %s\n\n", raw.SuggestedAnswer)
	b.WriteString(`Improve the question by:
1. Ensuring physics accuracy and proper SI units
2. Making the question clearer and more precise
3. Ensuring all options are plausible but only one is correct
4. Following IB Physics standards

Respond in exactly this layout:
Refined Question: <question text>
A) <option>
B) <option>
C) <option>
D) <option>
CORRECT_ANSWER: <letter>
EXPLANATION: <one or two sentences>
IMPROVEMENTS_MADE:
- <improvement>
`)
	return b.String()
}
