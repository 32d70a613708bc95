package table

import (
	"errors"
	"fmt"
)

// Domain errors for the load, filter and plot pipeline
var (
	// Load errors
	ErrParse     = errors.New("file is not a valid spreadsheet")
	ErrEmptyFile = errors.New("spreadsheet has no data")

	// Selection errors
	ErrUnknownColumn = errors.New("unknown column")
	ErrUnknownValue  = errors.New("value not present in column")

	// Plot errors
	ErrNotNumeric      = errors.New("column is not a numerical type")
	ErrPlotting        = errors.New("plotting failed")
	ErrUnsupportedKind = errors.New("unsupported chart kind")

	// Construction errors
	ErrRaggedColumns   = errors.New("columns have unequal length")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// PlottingHint is shown alongside every plotting failure
const PlottingHint = "Ensure the X-axis column does not contain duplicate values or check the data types."

// NewParseError wraps a reader failure
func NewParseError(cause error) error {
	return fmt.Errorf("%w: %v", ErrParse, cause)
}

func NewUnknownColumnError(column string) error {
	return fmt.Errorf("%w %q", ErrUnknownColumn, column)
}

func NewUnknownValueError(column, key string) error {
	return fmt.Errorf("%w: %q not found in column %q", ErrUnknownValue, key, column)
}

// NotNumericError names the column a plot request rejected
type NotNumericError struct {
	Column string
}

func (e *NotNumericError) Error() string {
	return fmt.Sprintf("%v: %q", ErrNotNumeric, e.Column)
}

func (e *NotNumericError) Unwrap() error {
	return ErrNotNumeric
}

// NewNotNumericError names the offending column
func NewNotNumericError(column string) error {
	return &NotNumericError{Column: column}
}

func NewPlottingError(cause error) error {
	return fmt.Errorf("%w: %v", ErrPlotting, cause)
}

// IsSelectionError reports errors the user recovers from by choosing again
func IsSelectionError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrUnknownValue) ||
		errors.Is(err, ErrNotNumeric)
}

// IsLoadError reports errors that leave the session without a table
func IsLoadError(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrEmptyFile)
}
