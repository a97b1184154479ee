package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeExtraction        = "EXTRACTION_ERROR"
	ErrCodePasswordRequired  = "PASSWORD_REQUIRED"
	ErrCodePasswordIncorrect = "PASSWORD_INCORRECT"
	ErrCodeProvider          = "PROVIDER_ERROR"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvalidOperation  = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidReportStatus  = NewDomainError(ErrCodeValidation, "invalid report status")
	ErrInvalidFileType      = NewDomainError(ErrCodeValidation, "invalid file type")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrChunkEmbeddingLength = NewDomainError(ErrCodeValidation, "chunk and embedding counts do not match")
)

// Not found errors
var (
	ErrReportNotFound = NewDomainError(ErrCodeNotFound, "report not found")
	ErrChunkNotFound  = NewDomainError(ErrCodeNotFound, "chunk not found")
)

// Extraction errors. Password conditions are distinguishable from
// generic extraction failure so callers can prompt for credentials.
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeExtraction, "unsupported file type")
	ErrPasswordRequired    = NewDomainError(ErrCodePasswordRequired, "file is password-protected, password required")
	ErrPasswordIncorrect   = NewDomainError(ErrCodePasswordIncorrect, "password is incorrect")
	ErrNoExtractableText   = NewDomainError(ErrCodeExtraction, "document has no extractable content")
)

// Provider errors
var (
	ErrUnsupportedProvider = NewDomainError(ErrCodeProvider, "unsupported LLM provider")
	ErrEmbeddingFailed     = NewDomainError(ErrCodeProvider, "embedding generation failed")
	ErrCompletionFailed    = NewDomainError(ErrCodeProvider, "completion generation failed")
)

// Operation errors
var (
	ErrReportNotIndexed   = NewDomainError(ErrCodeInvalidOperation, "report is not indexed")
	ErrStorageWriteFailed = NewDomainError(ErrCodeStorage, "storage write failed")
)
