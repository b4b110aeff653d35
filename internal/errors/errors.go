package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
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

// Is matches any AppError carrying the same code, so sentinel comparisons
// via errors.Is work against constructed errors.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
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
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
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

// GetCode returns the error code if the chain holds an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Message returns the outermost user-facing message of an AppError chain.
func Message(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNoDataset     = "NO_DATASET"

	// Input errors: the dataset is not admitted into the session.
	CodeEmptyDataset     = "EMPTY_DATASET"
	CodeMissingColumns   = "MISSING_COLUMNS"
	CodeDuplicateKey     = "DUPLICATE_KEY"
	CodeParseError       = "PARSE_ERROR"
	CodeDateParseError   = "DATE_PARSE_ERROR"
	CodeAllMissingColumn = "ALL_MISSING_COLUMN"

	// Analysis-precondition errors: scoped to one analysis request.
	CodeInsufficientSamples    = "INSUFFICIENT_SAMPLES"
	CodeInsufficientGroups     = "INSUFFICIENT_GROUPS"
	CodeInsufficientCategories = "INSUFFICIENT_CATEGORIES"
	CodeEmptyColumn            = "EMPTY_COLUMN"
	CodeInvalidColumnSelection = "INVALID_COLUMN_SELECTION"
	CodeZeroVariance           = "ZERO_VARIANCE"
	CodeUnsupportedExport      = "UNSUPPORTED_EXPORT"
)

var inputCodes = map[string]bool{
	CodeEmptyDataset:     true,
	CodeMissingColumns:   true,
	CodeDuplicateKey:     true,
	CodeParseError:       true,
	CodeDateParseError:   true,
	CodeAllMissingColumn: true,
}

var analysisCodes = map[string]bool{
	CodeInsufficientSamples:    true,
	CodeInsufficientGroups:     true,
	CodeInsufficientCategories: true,
	CodeEmptyColumn:            true,
	CodeInvalidColumnSelection: true,
	CodeZeroVariance:           true,
	CodeUnsupportedExport:      true,
}

// IsInputError reports whether err rejects an uploaded dataset.
func IsInputError(err error) bool {
	return inputCodes[GetCode(err)]
}

// IsAnalysisError reports whether err is a precondition failure of a single
// analysis or chart request.
func IsAnalysisError(err error) bool {
	return analysisCodes[GetCode(err)]
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NoDataset() *AppError {
	return New(CodeNoDataset, "No dataset loaded. Please upload data first")
}

func EmptyDataset() *AppError {
	return New(CodeEmptyDataset, "Dataset is empty")
}

func MissingColumns(columns []string) *AppError {
	return New(CodeMissingColumns, "Missing required columns: "+strings.Join(columns, ", "))
}

func DuplicateKey() *AppError {
	return New(CodeDuplicateKey, "Duplicate patient IDs found")
}

func ParseError(message string, cause error) *AppError {
	return &AppError{Code: CodeParseError, Message: message, Cause: cause}
}

func DateParseError(column, value string) *AppError {
	return New(CodeDateParseError, fmt.Sprintf("column %q: cannot parse %q as a date", column, value))
}

func AllMissingColumn(column string) *AppError {
	return New(CodeAllMissingColumn, fmt.Sprintf("column %q has no non-missing values", column))
}

func InsufficientSamples(message string) *AppError {
	return New(CodeInsufficientSamples, message)
}

func InsufficientGroups(message string) *AppError {
	return New(CodeInsufficientGroups, message)
}

func InsufficientCategories(message string) *AppError {
	return New(CodeInsufficientCategories, message)
}

func EmptyColumn(column string) *AppError {
	return New(CodeEmptyColumn, fmt.Sprintf("column %q has no non-missing values", column))
}

// InvalidColumnSelection names the offending request field.
func InvalidColumnSelection(field, reason string) *AppError {
	return New(CodeInvalidColumnSelection, fmt.Sprintf("invalid %s: %s", field, reason))
}

func ZeroVariance(message string) *AppError {
	return New(CodeZeroVariance, message)
}

func UnsupportedExport(kind string) *AppError {
	return New(CodeUnsupportedExport, fmt.Sprintf("chart kind %q cannot be exported as PNG", kind))
}
