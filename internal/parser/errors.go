package parser

import "fmt"

// ErrorKind classifies why a response could not be parsed.
type ErrorKind string

const (
	KindMissingQuestion     ErrorKind = "missing_question"
	KindWrongOptionCount    ErrorKind = "wrong_option_count"
	KindEmptyOption         ErrorKind = "empty_option"
	KindDuplicateOptions    ErrorKind = "duplicate_options"
	KindInvalidAnswerFormat ErrorKind = "invalid_answer_format"
)

// ParseError describes why a generation response did not yield a question.
// Parse errors are always worth another generation attempt.
type ParseError struct {
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Kind, e.Message)
}
