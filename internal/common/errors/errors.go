// Package errors provides standardized error handling for the directory pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Record-level errors
	ErrCodeParseError       ErrorCode = "PARSE_ERROR"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Collection-level errors (fatal for builders)
	ErrCodeCollectionMissing    ErrorCode = "COLLECTION_MISSING"
	ErrCodeCollectionEmpty      ErrorCode = "COLLECTION_EMPTY"
	ErrCodeCollectionUnreadable ErrorCode = "COLLECTION_UNREADABLE"
	ErrCodeNoValidRecords       ErrorCode = "NO_VALID_RECORDS"

	// Cross-record identity errors
	ErrCodeDuplicateID   ErrorCode = "DUPLICATE_ID"
	ErrCodeDuplicateSlug ErrorCode = "DUPLICATE_SLUG"

	// Artifact publishing errors
	ErrCodeArtifactWriteFailed  ErrorCode = "ARTIFACT_WRITE_FAILED"
	ErrCodeSearchPublishFailed  ErrorCode = "SEARCH_PUBLISH_FAILED"
	ErrCodeProposalWriteFailed  ErrorCode = "PROPOSAL_WRITE_FAILED"
	ErrCodeNotificationFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeRateLimitExceeded    ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeCSRFRejected         ErrorCode = "CSRF_REJECTED"
	ErrCodeRecordNotFound       ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeRateLimitCheckFailed ErrorCode = "RATE_LIMIT_CHECK_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err if it wraps a StandardError.
func CodeOf(err error) (ErrorCode, bool) {
	var std *StandardError
	if errors.As(err, &std) {
		return std.Code, true
	}
	return "", false
}

// IsCollectionError reports whether err is fatal for the builders.
func IsCollectionError(err error) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	switch code {
	case ErrCodeCollectionMissing, ErrCodeCollectionEmpty, ErrCodeCollectionUnreadable, ErrCodeNoValidRecords:
		return true
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewParseError marks a record file that is not well-formed JSON.
func NewParseError(file string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Record is not well-formed JSON",
		Details:   fmt.Sprintf("file: %s, error: %s", file, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError summarizes field-level violations for one record.
func NewValidationFailedError(file string, errorCount int) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Record failed schema validation",
		Details:   fmt.Sprintf("file: %s, errors: %d", file, errorCount),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollectionMissingError marks a records directory that does not exist.
func NewCollectionMissingError(dir string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollectionMissing,
		Message:   "Records directory does not exist",
		Details:   fmt.Sprintf("dir: %s", dir),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollectionEmptyError marks a records directory with no record files.
func NewCollectionEmptyError(dir string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollectionEmpty,
		Message:   "Records directory contains no records",
		Details:   fmt.Sprintf("dir: %s", dir),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollectionUnreadableError marks an I/O failure while reading the collection.
func NewCollectionUnreadableError(dir string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollectionUnreadable,
		Message:   "Records directory could not be read",
		Details:   fmt.Sprintf("dir: %s, error: %s", dir, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoValidRecordsError marks a collection where every record failed
// validation. Fatal for the builders: an empty artifact is never published.
func NewNoValidRecordsError(dir string, total int) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoValidRecords,
		Message:   "Every record in the collection failed validation",
		Details:   fmt.Sprintf("dir: %s, records: %d", dir, total),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateIDError marks two records sharing an id.
func NewDuplicateIDError(id, firstFile, secondFile string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateID,
		Message:   "Two records share an id",
		Details:   fmt.Sprintf("id: %s, first: %s, second: %s", id, firstFile, secondFile),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateSlugError marks two records sharing a slug.
func NewDuplicateSlugError(slug, firstFile, secondFile string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSlug,
		Message:   "Two records share a slug",
		Details:   fmt.Sprintf("slug: %s, first: %s, second: %s", slug, firstFile, secondFile),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactWriteFailedError marks a failed artifact publish. The previous
// artifact is left untouched.
func NewArtifactWriteFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactWriteFailed,
		Message:   "Artifact could not be written",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchPublishFailedError marks a failed Elasticsearch reindex.
func NewSearchPublishFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchPublishFailed,
		Message:   "Search index publish failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProposalWriteFailedError marks a change proposal that could not be recorded.
func NewProposalWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProposalWriteFailed,
		Message:   "Change proposal could not be recorded",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationFailedError marks a maintainer notification failure.
func NewNotificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Maintainer notification failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitExceededError marks a submitter over quota.
func NewRateLimitExceededError(identity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Submission quota exceeded for this identity",
		Details:   fmt.Sprintf("identity: %s", identity),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitCheckFailedError marks a limiter backend failure.
func NewRateLimitCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitCheckFailed,
		Message:   "Rate limit check failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCSRFRejectedError marks a request without a valid CSRF token pair.
func NewCSRFRejectedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCSRFRejected,
		Message:   "Request rejected by CSRF protection",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError marks an update/delete against an unknown slug.
func NewRecordNotFoundError(slug string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "No record with this slug",
		Details:   fmt.Sprintf("slug: %s", slug),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
