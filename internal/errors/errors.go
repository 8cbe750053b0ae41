package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrUnknownOption   = errors.New("unknown configuration key")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeArrayLine ErrorType = "array_line"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewEmptyInputError is returned before any parsing when the trimmed input is empty
func NewEmptyInputError() *AppError {
	return NewInputError("input is empty", ErrEmptyInput)
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewServerError creates a new error related to the HTTP adapter
func NewServerError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeServer,
		Message: message,
		Err:     err,
	}
}

// ArrayLineError reports a bracketed line that did not parse as JSON.
// It is collected and logged, never returned as a conversion failure.
type ArrayLineError struct {
	Line    int
	Snippet string
	Err     error
}

// Error implements error interface
func (e *ArrayLineError) Error() string {
	return fmt.Sprintf("%s: line %d %q: %v", ErrorTypeArrayLine, e.Line, e.Snippet, e.Err)
}

// Unwrap returns wrapped error
func (e *ArrayLineError) Unwrap() error {
	return e.Err
}

// IsEmptyInput reports whether err signals empty input
func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

// IsParseError reports whether err is a fatal conversion parse failure
func IsParseError(err error) bool {
	return errors.Is(err, &AppError{Type: ErrorTypeParsing})
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			if errors.Is(appErr.Err, ErrEmptyInput) {
				return "Please enter some data first"
			}
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			// the parser detail is kept verbatim to help fix malformed input
			if appErr.Err != nil {
				return fmt.Sprintf("Error: %s: %v", appErr.Message, appErr.Err)
			}
			return fmt.Sprintf("Error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeServer:
			return fmt.Sprintf("Server error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	var lineErr *ArrayLineError
	if errors.As(err, &lineErr) {
		return fmt.Sprintf("Skipped line %d: %v", lineErr.Line, lineErr.Err)
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Please enter some data first"
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your syntax."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
