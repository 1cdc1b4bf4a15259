package classify

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes classification errors.
type ErrorCode string

const (
	// CodeNoRules indicates an empty input rule list.
	CodeNoRules ErrorCode = "NO_RULES"

	// CodeNoRelevantRules indicates that filtering left nothing to classify.
	CodeNoRelevantRules ErrorCode = "NO_RELEVANT_RULES"

	// CodeInvalidConfig indicates unusable parameters.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// CodeInvalidComparison indicates a gain between measures of opposite
	// dependency directions.
	CodeInvalidComparison ErrorCode = "INVALID_COMPARISON"
)

// Error is returned by Classify and Analyze.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Item is the item of interest being classified.
	Item string

	// Measure is the interest measure name.
	Measure string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Item != "" {
		msg = fmt.Sprintf("%s (item=%s, measure=%s)", msg, e.Item, e.Measure)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a caller-input problem: no
// rules, no relevant rules or invalid parameters.
func IsValidationError(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		switch ce.Code {
		case CodeNoRules, CodeNoRelevantRules, CodeInvalidConfig:
			return true
		}
	}
	return false
}

// CodeOf returns the code of a classification error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newError(code ErrorCode, item string, cfg Config, message string) *Error {
	return &Error{Code: code, Message: message, Item: item, Measure: cfg.Measure}
}
