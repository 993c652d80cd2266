package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingInput      = errors.New("missing input")
	ErrUnknownModel      = errors.New("unknown model")
	ErrArtifactNotFound  = errors.New("model artifact not found")
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrMalformedInput    = errors.New("malformed input")
)

type ErrorKind string

const (
	KindMissingInput      ErrorKind = "missing_input"
	KindUnknownModel      ErrorKind = "unknown_model"
	KindArtifactNotFound  ErrorKind = "artifact_not_found"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindMalformedInput    ErrorKind = "malformed_input"
	KindInference         ErrorKind = "inference_failed"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
)

// EvalError is the failure side of Evaluate. It is local to one call and never
// fatal to the process.
type EvalError struct {
	Kind   ErrorKind
	Field  string
	Fields []string
	Reason string
	Err    error
}

func (e *EvalError) Error() string {
	return e.Err.Error()
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

type ErrorDisplay struct {
	Severity Severity
	Kind     ErrorKind
	Message  string
	Field    string   `json:"Field,omitempty"`
	Fields   []string `json:"Fields,omitempty"`
}

func (e *EvalError) Display() ErrorDisplay {
	display := ErrorDisplay{
		Severity: SeverityDanger,
		Kind:     e.Kind,
		Field:    e.Field,
		Fields:   e.Fields,
	}

	switch e.Kind {
	case KindMissingInput:
		display.Severity = SeverityInfo
		if len(e.Fields) > 0 {
			display.Message = fmt.Sprintf("Please provide input for: %s.", strings.Join(e.Fields, ", "))
		} else {
			display.Message = "Please provide input and select a model."
		}
	case KindUnknownModel:
		display.Message = "The selected model is not available."
	case KindArtifactNotFound:
		display.Message = "The selected model has not been deployed yet."
	case KindUnsupportedFormat:
		display.Message = "The selected model is stored in a format this server cannot load."
	case KindMalformedInput:
		display.Message = fmt.Sprintf("Invalid value for %s: %s.", e.Field, e.Reason)
	default:
		display.Message = "The prediction could not be computed."
	}

	return display
}

// classify wraps err into an EvalError based on the sentinel it carries.
func classify(err error) *EvalError {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		kind := KindMalformedInput
		if errors.Is(err, ErrMissingInput) {
			kind = KindMissingInput
		}
		return &EvalError{Kind: kind, Field: fieldErr.Field, Fields: fieldErr.Missing, Reason: fieldErr.Reason, Err: err}
	}

	switch {
	case errors.Is(err, ErrMissingInput):
		return &EvalError{Kind: KindMissingInput, Err: err}
	case errors.Is(err, ErrUnknownModel):
		return &EvalError{Kind: KindUnknownModel, Err: err}
	case errors.Is(err, ErrArtifactNotFound):
		return &EvalError{Kind: KindArtifactNotFound, Err: err}
	case errors.Is(err, ErrUnsupportedFormat):
		return &EvalError{Kind: KindUnsupportedFormat, Err: err}
	case errors.Is(err, ErrMalformedInput):
		return &EvalError{Kind: KindMalformedInput, Err: err}
	default:
		return &EvalError{Kind: KindInference, Err: err}
	}
}
