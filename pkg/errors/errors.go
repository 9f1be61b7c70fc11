package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrConfigLoad   ErrorCode = "CONFIG_LOAD"

	// Grammar errors: a line or file could not be parsed
	ErrGrammarLine       ErrorCode = "GRAMMAR_LINE"
	ErrGrammarProperties ErrorCode = "GRAMMAR_PROPERTIES"
	ErrDuplicateProperty ErrorCode = "GRAMMAR_DUPLICATE_PROPERTY"
	ErrGrammarSequence   ErrorCode = "GRAMMAR_SEQUENCE"
	ErrGrammarConfig     ErrorCode = "GRAMMAR_CONFIG"
	ErrMissingLoaderName ErrorCode = "MISSING_LOADER_NAME"
	ErrAugmentationLine  ErrorCode = "AUGMENTATION_NOT_ALLOWED"

	// Structural errors: parsed inputs are inconsistent with each other
	ErrPositionCollision      ErrorCode = "POSITION_COLLISION"
	ErrUnclaimedPath          ErrorCode = "UNCLAIMED_PATH"
	ErrConfigFileCount        ErrorCode = "CONFIG_FILE_COUNT"
	ErrOverrideFileCount      ErrorCode = "OVERRIDE_FILE_COUNT"
	ErrMissingPromotionProp   ErrorCode = "MISSING_PROMOTION_PROPERTY"
	ErrReservedProperty       ErrorCode = "RESERVED_PROPERTY"
	ErrDuplicateAugmentation  ErrorCode = "DUPLICATE_AUGMENTATION"
	ErrDuplicatePromotionLine ErrorCode = "DUPLICATE_PROMOTION_LINE"
	ErrAdditionalProperties   ErrorCode = "ADDITIONAL_PROPERTIES"
	ErrEmptyManifest          ErrorCode = "EMPTY_MANIFEST"

	// Validation errors: a manifest is read back for execution
	ErrSequenceOrder       ErrorCode = "SEQUENCE_ORDER"
	ErrDuplicateFile       ErrorCode = "DUPLICATE_FILE"
	ErrFileMissing         ErrorCode = "FILE_MISSING"
	ErrLoaderMissing       ErrorCode = "LOADER_MISSING"
	ErrHashMismatch        ErrorCode = "HASH_MISMATCH"
	ErrHashMissing         ErrorCode = "HASH_MISSING"
	ErrVersionIncompatible ErrorCode = "VERSION_INCOMPATIBLE"
	ErrUnimplicatedFiles   ErrorCode = "UNIMPLICATED_FILES"
)

// Category groups error codes by the stage that raises them
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryGrammar    Category = "grammar"
	CategoryStructural Category = "structural"
	CategoryValidation Category = "validation"
)

var categories = map[ErrorCode]Category{
	ErrGrammarLine:       CategoryGrammar,
	ErrGrammarProperties: CategoryGrammar,
	ErrDuplicateProperty: CategoryGrammar,
	ErrGrammarSequence:   CategoryGrammar,
	ErrGrammarConfig:     CategoryGrammar,
	ErrMissingLoaderName: CategoryGrammar,
	ErrAugmentationLine:  CategoryGrammar,

	ErrPositionCollision:      CategoryStructural,
	ErrUnclaimedPath:          CategoryStructural,
	ErrConfigFileCount:        CategoryStructural,
	ErrOverrideFileCount:      CategoryStructural,
	ErrMissingPromotionProp:   CategoryStructural,
	ErrReservedProperty:       CategoryStructural,
	ErrDuplicateAugmentation:  CategoryStructural,
	ErrDuplicatePromotionLine: CategoryStructural,
	ErrAdditionalProperties:   CategoryStructural,
	ErrEmptyManifest:          CategoryStructural,

	ErrSequenceOrder:       CategoryValidation,
	ErrDuplicateFile:       CategoryValidation,
	ErrFileMissing:         CategoryValidation,
	ErrLoaderMissing:       CategoryValidation,
	ErrHashMismatch:        CategoryValidation,
	ErrHashMissing:         CategoryValidation,
	ErrVersionIncompatible: CategoryValidation,
	ErrUnimplicatedFiles:   CategoryValidation,
}

// PromoteError represents a structured error with code and details
type PromoteError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PromoteError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PromoteError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PromoteError) Is(target error) bool {
	var targetErr *PromoteError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PromoteError with the given code and message
func New(code ErrorCode, message string) *PromoteError {
	return &PromoteError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PromoteError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PromoteError {
	return &PromoteError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PromoteError
func Wrap(err error, code ErrorCode, message string) *PromoteError {
	if err == nil {
		return nil
	}
	return &PromoteError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PromoteError {
	if err == nil {
		return nil
	}
	return &PromoteError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PromoteError) WithDetail(key string, value interface{}) *PromoteError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PromoteError) WithDetails(details map[string]interface{}) *PromoteError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var promoteErr *PromoteError
	if errors.As(err, &promoteErr) {
		return promoteErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PromoteError
func GetErrorCode(err error) ErrorCode {
	var promoteErr *PromoteError
	if errors.As(err, &promoteErr) {
		return promoteErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PromoteError
func GetErrorDetails(err error) map[string]interface{} {
	var promoteErr *PromoteError
	if errors.As(err, &promoteErr) {
		return promoteErr.Details
	}
	return nil
}

// CategoryOf reports which stage raised err. Only the outermost PromoteError
// in the chain is considered.
func CategoryOf(err error) Category {
	if c, ok := categories[GetErrorCode(err)]; ok {
		return c
	}
	return CategoryGeneral
}
