package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"sheetview/domain/table"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeRateLimited     = "RATE_LIMITED"

	// Pipeline codes
	CodeParseError    = "PARSE_ERROR"
	CodeEmptyFile     = "EMPTY_FILE"
	CodeUnknownColumn = "UNKNOWN_COLUMN"
	CodeUnknownValue  = "UNKNOWN_VALUE"
	CodeNotNumeric    = "NOT_NUMERIC"
	CodePlotting      = "PLOTTING_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// FromDomain classifies a pipeline error into an AppError carrying the
// message shown to the user. Errors that already are AppErrors pass through.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var notNumeric *table.NotNumericError
	if stderrors.As(err, &notNumeric) {
		return NotNumeric(notNumeric.Column, err)
	}

	switch {
	case stderrors.Is(err, table.ErrParse):
		return &AppError{Code: CodeParseError, Message: "The uploaded file could not be read as a spreadsheet.", Cause: err}
	case stderrors.Is(err, table.ErrEmptyFile):
		return &AppError{Code: CodeEmptyFile, Message: "The uploaded spreadsheet contains no data.", Cause: err}
	case stderrors.Is(err, table.ErrUnknownColumn):
		return &AppError{Code: CodeUnknownColumn, Message: "The selected column does not exist.", Cause: err}
	case stderrors.Is(err, table.ErrUnknownValue):
		return &AppError{Code: CodeUnknownValue, Message: "The selected value does not occur in the column.", Cause: err}
	case stderrors.Is(err, table.ErrUnsupportedKind):
		return &AppError{Code: CodeInvalidInput, Message: "Choose either a line chart or a bar chart.", Cause: err}
	case stderrors.Is(err, table.ErrPlotting):
		return &AppError{Code: CodePlotting, Message: "An error occurred while plotting. " + table.PlottingHint, Cause: err}
	}
	internalErr := InternalError("An unexpected error occurred.")
	internalErr.Cause = err
	return internalErr
}

// NotNumeric builds the banner for a non-numeric plot column
func NotNumeric(column string, cause error) *AppError {
	return &AppError{
		Code:    CodeNotNumeric,
		Message: fmt.Sprintf("The column '%s' is not a numerical type. Please select a numerical column for the Y-axis.", column),
		Cause:   cause,
	}
}

// HTTPStatus maps an error code to the response status
func HTTPStatus(code string) int {
	switch code {
	case CodeParseError, CodeEmptyFile, CodeInvalidInput, CodeValidationError:
		return http.StatusBadRequest
	case CodeUnknownColumn, CodeUnknownValue, CodeNotNumeric:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
