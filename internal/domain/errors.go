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

// Is reports whether target is a DomainError with the same code and message.
// Sentinels wrapped with a cause still match the bare sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
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
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeSearchFailed     = "SEARCH_FAILED"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Validation errors
var (
	ErrInvalidSiteStatus         = NewDomainError(ErrCodeValidation, "invalid site status")
	ErrInvalidRole               = NewDomainError(ErrCodeValidation, "invalid role")
	ErrInvalidEmbeddingJobStatus = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidImageType          = NewDomainError(ErrCodeValidation, "only image uploads are allowed")
)

// Not found errors
var (
	ErrSiteNotFound     = NewDomainError(ErrCodeNotFound, "site not found")
	ErrCategoryNotFound = NewDomainError(ErrCodeNotFound, "category not found")
	ErrSessionNotFound  = NewDomainError(ErrCodeNotFound, "session not found")
	ErrObjectNotFound   = NewDomainError(ErrCodeNotFound, "object not found")
)

// Already exists errors
var (
	ErrSiteURLExists  = NewDomainError(ErrCodeAlreadyExists, "a site with this url already exists")
	ErrCategoryExists = NewDomainError(ErrCodeAlreadyExists, "category already exists")
)

// Authorization errors
var (
	ErrNotAuthenticated = NewDomainError(ErrCodeUnauthorized, "not authenticated")
	ErrForbidden        = NewDomainError(ErrCodeForbidden, "insufficient permissions")
)

// Operation errors
var (
	ErrSearchFailed         = NewDomainError(ErrCodeSearchFailed, "search failed")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrStorageUnavailable   = NewDomainError(ErrCodeUnavailable, "object storage is not configured")
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeUnavailable, "embedding provider is not configured")
)
