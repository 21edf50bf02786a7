package record

import "fmt"

// Code classifies a validation failure.
type Code string

const (
	CodeMissingField               Code = "MissingField"
	CodeInvalidValue               Code = "InvalidValue"
	CodeInvalidTimestamp           Code = "InvalidTimestamp"
	CodeJudgmentIntegrityViolation Code = "JudgmentIntegrityViolation"
)

// ValidationError is the rejection returned for a bad candidate. Field
// names the offending field where one applies; Reason is always set and
// human-readable.
type ValidationError struct {
	Code   Code
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Code: CodeMissingField, Field: field, Reason: "required field is missing"}
}

func invalidValue(field, reason string) *ValidationError {
	return &ValidationError{Code: CodeInvalidValue, Field: field, Reason: reason}
}
