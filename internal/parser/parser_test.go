package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/topics"
)

const wellFormed = `QUESTION: A car accelerates uniformly from rest to 20 m/s in 5 s. What is its acceleration?
A) 2 m/s²
B) 4 m/s²
C) 10 m/s²
D) 100 m/s²
ANSWER: B`

func TestParse_WellFormed(t *testing.T) {
	q, err := Parse(wellFormed, "kinematics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	if q.Confidence <= 0.5 {
		t.Errorf("expected confidence > 0.5, got %f", q.Confidence)
	}
	if q.Confidence != 1.0 {
		t.Errorf("expected full confidence, got %f", q.Confidence)
	}
	if q.SuggestedAnswer != question.LetterB {
		t.Errorf("answer = %q, want B", q.SuggestedAnswer)
	}
	if !strings.HasPrefix(q.Text, "A car accelerates") || !strings.HasSuffix(q.Text, "acceleration?") {
		t.Errorf("unexpected stem %q", q.Text)
	}
	if q.Options[2] != "10 m/s²" {
		t.Errorf("option C = %q", q.Options[2])
	}
	if q.Topic != "kinematics" {
		t.Errorf("topic = %q", q.Topic)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    ErrorKind
		message string
	}{
		{
			name: "two options",
			input: `QUESTION: What is the SI unit of electric charge?
A) Coulomb
B) Ampere
ANSWER: A`,
			kind:    KindWrongOptionCount,
			message: "Expected 4 options, found 2",
		},
		{
			name:    "no options",
			input:   "The generator could not produce a question about this topic today.",
			kind:    KindWrongOptionCount,
			message: "Expected 4 options, found 0",
		},
		{
			name: "short stem",
			input: `QUESTION: Hi?
A) one
B) two
C) three
D) four`,
			kind: KindMissingQuestion,
		},
		{
			name: "empty option",
			input: `QUESTION: Which quantity is a vector?
A) Speed
B) Mass
C)
D) Displacement`,
			kind: KindEmptyOption,
		},
		{
			name: "duplicate options",
			input: `QUESTION: What is the weight of a 1 kg mass on Earth?
A) 9.8 N
B) 9.8 N
C) 1 N
D) 0 N`,
			kind: KindDuplicateOptions,
		},
		{
			name: "answer out of range",
			input: `QUESTION: Which particle has no electric charge?
A) Proton
B) Electron
C) Neutron
D) Positron
ANSWER: E`,
			kind: KindInvalidAnswerFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "kinematics")
			if err == nil {
				t.Fatal("expected error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", perr.Kind, tt.kind)
			}
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.message)
			}
		})
	}
}

func TestParse_Variants(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		answer question.Letter
		optB   string
	}{
		{
			name: "lowercase options",
			input: `Question 1: Which of the following is the SI unit of power?
a) joule
b) watt
c) newton
d) pascal
Correct answer: b`,
			answer: question.LetterB,
			optB:   "watt",
		},
		{
			name: "option prefix",
			input: `Q: A wave has frequency 50 Hz and wavelength 2 m. What is its speed?
Option A - 25 m/s
Option B - 100 m/s
Option C - 52 m/s
Option D - 48 m/s
The correct answer is (B)`,
			answer: question.LetterB,
			optB:   "100 m/s",
		},
		{
			name:   "inline options",
			input:  "Question: What is the SI unit of force? A) Joule B) Newton C) Watt D) Pascal\nAnswer: B",
			answer: question.LetterB,
			optB:   "Newton",
		},
		{
			name: "answer given as option text",
			input: `QUESTION: What is the SI unit of force?
A) Joule
B) Newton
C) Watt
D) Pascal
ANSWER: Newton`,
			answer: question.LetterB,
			optB:   "Newton",
		},
		{
			name: "markdown and no header",
			input: "**Which colour of visible light has the longest wavelength?**\n\n" +
				"**A)** Red\n**B)** Green\n**C)** Blue\n**D)** Violet\n\n**Answer:** A",
			answer: question.LetterA,
			optB:   "Green",
		},
		{
			name: "parenthesised letters",
			input: `QUESTION: Which instrument measures potential difference?
(A) Ammeter
(B) Voltmeter
(C) Galvanometer
(D) Ohmmeter
ANSWER: (B)`,
			answer: question.LetterB,
			optB:   "Voltmeter",
		},
		{
			name: "answer label wrapping a sentence",
			input: `QUESTION: Which quantity is a vector?
A) Speed
B) Velocity
C) Mass
D) Energy
Answer: The correct answer is B`,
			answer: question.LetterB,
			optB:   "Velocity",
		},
		{
			name: "answer letter ends the sentence",
			input: `QUESTION: Which quantity is a vector?
A) Speed
B) Velocity
C) Mass
D) Energy
Answer: I would go with B.`,
			answer: question.LetterB,
			optB:   "Velocity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input, "waves")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.SuggestedAnswer != tt.answer {
				t.Errorf("answer = %q, want %q", q.SuggestedAnswer, tt.answer)
			}
			if q.Options[1] != tt.optB {
				t.Errorf("option B = %q, want %q", q.Options[1], tt.optB)
			}
			if strings.Contains(q.Text, "A)") {
				t.Errorf("stem leaked options: %q", q.Text)
			}
		})
	}
}

func TestParse_MissingAnswerDefaultsToA(t *testing.T) {
	input := `QUESTION: Which of these is a scalar quantity?
A) Velocity
B) Energy
C) Force
D) Momentum`
	q, err := Parse(input, "work-energy-power")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SuggestedAnswer != question.LetterA {
		t.Errorf("answer = %q, want placeholder A", q.SuggestedAnswer)
	}
	// header but no answer marker: 0.5 + 0.1 for the question mark
	if q.Confidence != 0.6 {
		t.Errorf("confidence = %f, want 0.6", q.Confidence)
	}
}

func TestParse_ConfidencePenalties(t *testing.T) {
	short := `QUESTION: Which value is largest among these?
A) 1
B) 2
C) 3
D) 4
ANSWER: D`
	q, err := Parse(short, "kinematics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.5 + 0.2 + 0.1, then -0.2 for short options
	if q.Confidence != 0.6 {
		t.Errorf("short options: confidence = %f, want 0.6", q.Confidence)
	}

	folded := `QUESTION: Which force is needed to lift the block?
A) Ten newtons
B) ten newtons
C) Five newtons
D) Two newtons
ANSWER: A`
	q, err = Parse(folded, "forces-momentum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Confidence != 0.5 {
		t.Errorf("folded duplicates: confidence = %f, want 0.5", q.Confidence)
	}
}

func TestConfidence_Clamped(t *testing.T) {
	c := confidence("no", []string{"a", "a", "b", "c"}, false, false)
	if c != 0.1 {
		t.Errorf("confidence = %f, want floor 0.1", c)
	}
}

func TestParse_EnvelopeWithPromptEcho(t *testing.T) {
	prompt := GenerationPrompt(topics.Lookup("kinematics"), question.DifficultyStandard)
	body, err := json.Marshal(map[string]string{"response": prompt + " " + wellFormed})
	if err != nil {
		t.Fatal(err)
	}

	q, err := Parse(string(body), "kinematics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(q.Text, "A car accelerates") {
		t.Errorf("prompt echo not stripped: %q", q.Text)
	}
	if q.SuggestedAnswer != question.LetterB {
		t.Errorf("answer = %q", q.SuggestedAnswer)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
		plain bool
	}{
		{name: "plain text", raw: "QUESTION: hello", plain: true},
		{name: "malformed json", raw: `{"response": `, plain: true},
		{name: "response field", raw: `{"response": "hi", "text": "other"}`, field: "response"},
		{name: "json array", raw: `[{"x":1}]`, plain: true},
		{name: "last string field", raw: `{"id": 7, "first": "a", "result": "b"}`, field: "result"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.raw)
			switch v := r.(type) {
			case PlainReply:
				if !tt.plain {
					t.Errorf("expected envelope, got plain %q", v.Text)
				}
			case EnvelopeReply:
				if tt.plain {
					t.Fatalf("expected plain, got envelope field %q", v.Field)
				}
				if v.Field != tt.field {
					t.Errorf("field = %q, want %q", v.Field, tt.field)
				}
			}
		})
	}
}

func TestNormalize_InnerOutput(t *testing.T) {
	inner := `{"instruction": "x", "input": "Topic: Waves", "output": "QUESTION: generated"}`
	got := Normalize(EnvelopeReply{Field: "response", Body: inner})
	if got != "QUESTION: generated" {
		t.Errorf("got %q", got)
	}

	braces := `{"instruction": "use {braces}", "output": ""}   tail text`
	if got := Normalize(EnvelopeReply{Body: braces}); got != "tail text" {
		t.Errorf("got %q", got)
	}
}

func rawFixture() question.RawQuestion {
	return question.RawQuestion{
		Text:            "A car accelerates uniformly from rest to 20 m/s in 5 s. What is its acceleration?",
		Options:         []string{"2 m/s²", "4 m/s²", "10 m/s²", "100 m/s²"},
		SuggestedAnswer: question.LetterA,
		Confidence:      0.9,
		Topic:           "kinematics",
	}
}

func TestParseRefinement_Labeled(t *testing.T) {
	reply := `Refined Question: A car accelerates uniformly from rest to 20 m/s in 5.0 s. What is the magnitude of its acceleration?
A) 2.0 m/s²
B) 4.0 m/s²
C) 10 m/s²
D) 100 m/s²
CORRECT_ANSWER: B
EXPLANATION: a = Δv/Δt = 20/5.0 = 4.0 m/s².
IMPROVEMENTS_MADE:
- Added significant figures
- Corrected the answer key`

	q := ParseRefinement(reply, rawFixture())
	if q.ValidationStatus != question.StatusCorrected {
		t.Errorf("status = %q, want corrected", q.ValidationStatus)
	}
	if q.CorrectAnswer != question.LetterB {
		t.Errorf("answer = %q, want B", q.CorrectAnswer)
	}
	if q.Options[0] != "2.0 m/s²" {
		t.Errorf("option A = %q", q.Options[0])
	}
	if len(q.Improvements) != 2 || q.Improvements[1] != "Corrected the answer key" {
		t.Errorf("improvements = %v", q.Improvements)
	}
	if !strings.HasPrefix(q.Explanation, "a = Δv/Δt") {
		t.Errorf("explanation = %q", q.Explanation)
	}
	if q.Topic != "kinematics" {
		t.Errorf("topic = %q", q.Topic)
	}
}

func TestParseRefinement_PartialKeepsRaw(t *testing.T) {
	raw := rawFixture()
	q := ParseRefinement("CORRECT_ANSWER: B\nIMPROVEMENTS_MADE: fixed answer key", raw)
	if q.Text != raw.Text {
		t.Errorf("text should fall back to raw, got %q", q.Text)
	}
	if q.Options[3] != raw.Options[3] {
		t.Errorf("options should fall back to raw")
	}
	if q.CorrectAnswer != question.LetterB {
		t.Errorf("answer = %q", q.CorrectAnswer)
	}
	if q.ValidationStatus != question.StatusCorrected {
		t.Errorf("status = %q", q.ValidationStatus)
	}
	if len(q.Improvements) != 1 {
		t.Errorf("improvements = %v", q.Improvements)
	}
}

func TestParseRefinement_Unchanged(t *testing.T) {
	raw := rawFixture()
	reply := "Refined Question: " + raw.Text + "\nA) 2 m/s²\nB) 4 m/s²\nC) 10 m/s²\nD) 100 m/s²\nCORRECT_ANSWER: A"
	q := ParseRefinement(reply, raw)
	if q.ValidationStatus != question.StatusValid {
		t.Errorf("status = %q, want valid", q.ValidationStatus)
	}
}

func TestParseRefinement_Unreadable(t *testing.T) {
	raw := rawFixture()
	q := ParseRefinement("I'm sorry, I can't help with that.", raw)
	if q.ValidationStatus != question.StatusRejected {
		t.Errorf("status = %q, want rejected", q.ValidationStatus)
	}
	if q.Text != raw.Text || q.CorrectAnswer != raw.SuggestedAnswer {
		t.Error("rejected refinement should carry raw fields")
	}
}

func TestParseRefinement_JSON(t *testing.T) {
	reply := "Here is the improved question:\n```json\n" + `{
  "question": "A ball is dropped from rest. What is its speed after 2.0 s? (g = 9.8 m/s²)",
  "options": ["A) 4.9 m/s", "B) 9.8 m/s", "C) 19.6 m/s", "D) 39.2 m/s"],
  "correct_answer": "C",
  "explanation": "v = gt = 9.8 × 2.0 = 19.6 m/s"
}` + "\n```"

	q := ParseRefinement(reply, rawFixture())
	if q.ValidationStatus != question.StatusCorrected {
		t.Errorf("status = %q", q.ValidationStatus)
	}
	if q.CorrectAnswer != question.LetterC {
		t.Errorf("answer = %q", q.CorrectAnswer)
	}
	if q.Options[1] != "9.8 m/s" {
		t.Errorf("option prefix not stripped: %q", q.Options[1])
	}
	if q.Explanation == "" {
		t.Error("expected explanation")
	}
}

func TestGenerationPrompt(t *testing.T) {
	tp := topics.Lookup("kinematics")
	var doc map[string]string
	if err := json.Unmarshal([]byte(GenerationPrompt(tp, question.DifficultyHigher)), &doc); err != nil {
		t.Fatalf("prompt is not JSON: %v", err)
	}
	if doc["instruction"] != generationInstruction {
		t.Errorf("instruction = %q", doc["instruction"])
	}
	if !strings.Contains(doc["input"], "Topic: "+tp.Name) || !strings.Contains(doc["input"], "HL") {
		t.Errorf("input = %q", doc["input"])
	}
	if _, ok := doc["output"]; !ok {
		t.Error("missing output field")
	}
}

func TestRefinementPrompt(t *testing.T) {
	p := RefinementPrompt(rawFixture(), topics.Lookup("kinematics"))
	for _, want := range []string{"QUESTION: A car", "C) 10 m/s²", "SUGGESTED ANSWER: A", "CORRECT_ANSWER", "IMPROVEMENTS_MADE"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
