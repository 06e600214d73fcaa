package ldap

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ErrorCategory represents different categories of directory errors.
type ErrorCategory string

const (
	ErrorCategoryConnection     ErrorCategory = "connection"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryPermission     ErrorCategory = "permission"
	ErrorCategoryNotFound       ErrorCategory = "not_found"
	ErrorCategoryAlreadyExists  ErrorCategory = "already_exists"
	ErrorCategoryConflict       ErrorCategory = "conflict"
	ErrorCategoryMalformed      ErrorCategory = "malformed"
	ErrorCategoryTooMany        ErrorCategory = "too_many"
	ErrorCategoryServer         ErrorCategory = "server"
	ErrorCategoryUnknown        ErrorCategory = "unknown"
)

// Error provides enhanced error information for directory operations.
type Error struct {
	Operation string        // The operation that failed
	Category  ErrorCategory // Error category
	LDAPCode  uint16        // LDAP result code, if any
	Message   string        // Human-readable message
	DN        string        // DN involved in the operation (if applicable)
	Retryable bool          // Whether the error is retryable
	Cause     error         // Underlying error
}

func (e *Error) Error() string {
	var parts []string

	if e.LDAPCode > 0 {
		parts = append(parts, fmt.Sprintf("ldap %s failed (code %d)", e.Operation, e.LDAPCode))
	} else {
		parts = append(parts, fmt.Sprintf("ldap %s failed", e.Operation))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.DN != "" {
		parts = append(parts, fmt.Sprintf("DN: %s", e.DN))
	}

	return strings.Join(parts, " - ")
}

func (e *Error) IsRetryable() bool {
	return e.Retryable
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a categorized error from an underlying failure.
func NewError(operation string, err error) *Error {
	if err == nil {
		return nil
	}

	wrapped := &Error{
		Operation: operation,
		Cause:     err,
	}

	if resultErr, ok := err.(*ldap.Error); ok {
		wrapped.LDAPCode = resultErr.ResultCode
		wrapped.Category = categorizeCode(resultErr.ResultCode)
		wrapped.Retryable = isCodeRetryable(resultErr.ResultCode)
		wrapped.Message = ldap.LDAPResultCodeMap[resultErr.ResultCode]
	} else {
		wrapped.Category = categorizeGenericError(err)
		wrapped.Retryable = isGenericErrorRetryable(err)
		wrapped.Message = err.Error()
	}

	return wrapped
}

// NewCategorizedError creates an error with an explicit category, used by the
// domain layer for conditions the wire protocol cannot express (e.g. a
// uniqueness invariant violated by multiple search results).
func NewCategorizedError(operation string, category ErrorCategory, message string) *Error {
	return &Error{
		Operation: operation,
		Category:  category,
		Message:   message,
	}
}

// categorizeCode categorizes an error based on LDAP result code.
func categorizeCode(code uint16) ErrorCategory {
	switch code {
	case ldap.LDAPResultInvalidCredentials,
		ldap.LDAPResultInappropriateAuthentication,
		ldap.LDAPResultStrongAuthRequired:
		return ErrorCategoryAuthentication

	case ldap.LDAPResultInsufficientAccessRights:
		return ErrorCategoryPermission

	case ldap.LDAPResultNoSuchObject,
		ldap.LDAPResultNoSuchAttribute,
		ldap.LDAPResultUndefinedAttributeType:
		return ErrorCategoryNotFound

	case ldap.LDAPResultEntryAlreadyExists:
		return ErrorCategoryAlreadyExists

	// A value-level precondition lost the race: either the value we
	// expected to delete is gone or the one we tried to add appeared.
	case ldap.LDAPResultAttributeOrValueExists,
		ldap.LDAPResultNotAllowedOnNonLeaf:
		return ErrorCategoryConflict

	case ldap.LDAPResultInvalidAttributeSyntax,
		ldap.LDAPResultConstraintViolation,
		ldap.LDAPResultInvalidDNSyntax,
		ldap.LDAPResultNamingViolation,
		ldap.LDAPResultObjectClassViolation:
		return ErrorCategoryMalformed

	case ldap.LDAPResultSizeLimitExceeded,
		ldap.LDAPResultAdminLimitExceeded:
		return ErrorCategoryTooMany

	case ldap.LDAPResultServerDown,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultBusy,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultUnwillingToPerform:
		return ErrorCategoryServer

	case ldap.LDAPResultConnectError,
		ldap.LDAPResultProtocolError:
		return ErrorCategoryConnection

	default:
		return ErrorCategoryUnknown
	}
}

// categorizeGenericError categorizes non-LDAP errors.
func categorizeGenericError(err error) ErrorCategory {
	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") {
		return ErrorCategoryConnection
	}

	if strings.Contains(errStr, "authentication") ||
		strings.Contains(errStr, "credentials") {
		return ErrorCategoryAuthentication
	}

	if strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "access") ||
		strings.Contains(errStr, "denied") {
		return ErrorCategoryPermission
	}

	return ErrorCategoryUnknown
}

// isCodeRetryable determines if an LDAP result code indicates a retryable
// condition at the transport level. Conflict is deliberately excluded:
// losing a compare-and-swap must be retried from the read step by the
// caller, not by replaying the same write.
func isCodeRetryable(code uint16) bool {
	switch code {
	case ldap.LDAPResultBusy,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultServerDown,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultConnectError:
		return true
	default:
		return false
	}
}

// isGenericErrorRetryable determines if a generic error is retryable.
func isGenericErrorRetryable(err error) bool {
	errStr := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"connection",
		"timeout",
		"network",
		"broken pipe",
		"connection reset",
		"temporary failure",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// WrapError wraps an error with operation context.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if wrapped, ok := err.(*Error); ok {
		if wrapped.Operation == "" {
			// Annotate a copy; the original may be shared.
			annotated := *wrapped
			annotated.Operation = operation
			return &annotated
		}
		return wrapped
	}

	return NewError(operation, err)
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if retryable, ok := err.(RetryableError); ok {
		return retryable.IsRetryable()
	}

	return isGenericErrorRetryable(err)
}

// GetErrorCategory returns the category of an error.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryUnknown
	}

	if wrapped, ok := err.(*Error); ok {
		return wrapped.Category
	}

	if resultErr, ok := err.(*ldap.Error); ok {
		return categorizeCode(resultErr.ResultCode)
	}

	return categorizeGenericError(err)
}

// IsNotFound checks if an error indicates a "not found" condition.
func IsNotFound(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryNotFound
}

// IsAlreadyExists checks if an error indicates an add collision.
func IsAlreadyExists(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryAlreadyExists
}

// IsConflict checks if an error indicates a lost compare-and-swap.
func IsConflict(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryConflict
}

// IsMalformed checks if an error indicates unparseable data or names.
func IsMalformed(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryMalformed
}

// IsTooMany checks if an error indicates a violated uniqueness invariant.
func IsTooMany(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryTooMany
}

// IsInvalidCredentials checks specifically for a failed bind.
func IsInvalidCredentials(err error) bool {
	if err == nil {
		return false
	}
	if wrapped, ok := err.(*Error); ok {
		return wrapped.LDAPCode == ldap.LDAPResultInvalidCredentials
	}
	return ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials)
}
