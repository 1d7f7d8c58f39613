package ics

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingStartTime is returned by Download when the event has no
	// DTSTART. Nothing is written to the response in that case.
	ErrMissingStartTime = errors.New("start time not defined")
	// ErrInvalidTimeExpression is the sentinel wrapped by every
	// InvalidTimeExpressionError so callers can use errors.Is.
	ErrInvalidTimeExpression = errors.New("invalid time expression")
	// ErrNonTextValue is returned when a text property is set to a value that
	// is not text.
	ErrNonTextValue = errors.New("value is not text")
)

// InvalidTimeExpressionError reports a dtstart/dtend value that could not be
// resolved to a point in time.
type InvalidTimeExpressionError struct {
	Key  Key
	Expr string
	Err  error
}

func (e *InvalidTimeExpressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot resolve %q: %v", e.Key, e.Expr, e.Err)
	}
	return fmt.Sprintf("%s: cannot resolve %q", e.Key, e.Expr)
}

func (e *InvalidTimeExpressionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidTimeExpression}
	}
	return []error{ErrInvalidTimeExpression, e.Err}
}
