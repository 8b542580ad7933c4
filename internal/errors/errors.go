// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Pipeline sentinel errors. None of these abort a run; they are carried as
// diagnostic reasons for the candidate that failed.
var (
	ErrInputTooSmall      = errors.New("input too small for neighbor window")
	ErrNoExtremaFound     = errors.New("no parent extrema found")
	ErrNoBreakoutFound    = errors.New("no breakout found")
	ErrNoOrderParentFound = errors.New("no order parent found")
)

// Trendline rejection reasons.
var (
	ErrNotMoreExtreme       = errors.New("receiver not more extreme than sender")
	ErrNoTrailingExtremum   = errors.New("no further extremum beyond receiver")
	ErrNoConfirmationCandle = errors.New("no confirmation candle after receiver")
	ErrBelowDistance        = errors.New("vertical distance below threshold")
	ErrTrendlineCrossed     = errors.New("trendline passes too close to another extremum")
	ErrGapTooSmall          = errors.New("receiver gap too small for fallback link")
)

// Collaborator errors.
var (
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrDataNotFound    = errors.New("data not found")
	ErrDatabaseError   = errors.New("database error")
	ErrUnsupportedFile = errors.New("unsupported snapshot file")
)

// StageError records why a pipeline stage rejected one candidate.
type StageError struct {
	Stage   string
	Subject string
	Err     error
}

func (e *StageError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Stage, e.Subject, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stage, subject string, err error) *StageError {
	return &StageError{
		Stage:   stage,
		Subject: subject,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any validation failure against ErrConfigInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Source   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Source, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, source, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Source:   source,
		Message:  message,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
