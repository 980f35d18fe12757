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
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeRetrieval     = "RETRIEVAL_ERROR"
	ErrCodeSynthesis     = "SYNTHESIS_ERROR"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery          = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrInvalidSearchDepth  = NewDomainError(ErrCodeValidation, "search depth must be positive")
	ErrInvalidTicker       = NewDomainError(ErrCodeValidation, "ticker is required")
	ErrInvalidIngestStatus = NewDomainError(ErrCodeValidation, "invalid ingest job status")
)

// Not found errors
var (
	ErrTickerNotFound = NewDomainError(ErrCodeNotFound, "ticker not found in SEC database")
	ErrNoFilingsFound = NewDomainError(ErrCodeNotFound, "no 10-K filings found")
	ErrFilingNotFound = NewDomainError(ErrCodeNotFound, "filing not found")
	ErrJobNotFound    = NewDomainError(ErrCodeNotFound, "ingest job not found")
)

// Already exists errors
var (
	ErrFilingAlreadyIndexed = NewDomainError(ErrCodeAlreadyExists, "filing already indexed")
)

// Upstream errors
var (
	ErrRetrievalFailed  = NewDomainError(ErrCodeRetrieval, "vector search failed")
	ErrSynthesisFailed  = NewDomainError(ErrCodeSynthesis, "answer generation failed")
	ErrEdgarUnreachable = NewDomainError(ErrCodeUpstream, "SEC EDGAR request failed")
)
