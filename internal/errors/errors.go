package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes a session-resolution error. The code, not the
// message, drives engine policy: which codes force a sign-out, which fold
// into a pending session, and which are transient.
type ErrorCode string

const (
	// ErrCodeProviderUnavailable indicates the identity provider could not be
	// reached (reload/refresh timed out or network-failed). Transient; never
	// forces denial on its own.
	ErrCodeProviderUnavailable ErrorCode = "provider_unavailable"
	// ErrCodeIdentityNotFound indicates the provider no longer knows the
	// subject (e.g., account deleted server-side). Always forces sign-out.
	ErrCodeIdentityNotFound ErrorCode = "identity_not_found"
	// ErrCodeCredentialExpired indicates the provider credential could not be
	// refreshed. Always forces sign-out.
	ErrCodeCredentialExpired ErrorCode = "credential_expired"
	// ErrCodeEmailNotVerified indicates the verification gate failed. Always
	// forces sign-out; never retried automatically.
	ErrCodeEmailNotVerified ErrorCode = "email_not_verified"
	// ErrCodeDirectoryNotFound indicates no business code is mapped for the
	// identity. Folds into status=pending, never into denial.
	ErrCodeDirectoryNotFound ErrorCode = "directory_not_found"
	// ErrCodeDirectoryTransient indicates a directory lookup failed for
	// infrastructure reasons. Folds into status=pending, never into denial;
	// the distinction from not-found exists only for user-facing messaging.
	ErrCodeDirectoryTransient ErrorCode = "directory_transient"
	// ErrCodePersistedStore indicates the local record store failed. Treated
	// as "no persisted session"; resolution proceeds via the provider path.
	ErrCodePersistedStore ErrorCode = "persisted_store"
	// ErrCodeInternal indicates an unclassified failure.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is/As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ProviderUnavailable creates a new transient provider error.
func ProviderUnavailable(message string) *AppError {
	return &AppError{Code: ErrCodeProviderUnavailable, Message: message}
}

// IdentityNotFound creates a new identity-not-found error.
func IdentityNotFound(message string) *AppError {
	return &AppError{Code: ErrCodeIdentityNotFound, Message: message}
}

// CredentialExpired creates a new credential-expired error.
func CredentialExpired(message string) *AppError {
	return &AppError{Code: ErrCodeCredentialExpired, Message: message}
}

// EmailNotVerified creates a new verification-gate error.
func EmailNotVerified(message string) *AppError {
	return &AppError{Code: ErrCodeEmailNotVerified, Message: message}
}

// DirectoryNotFound creates a new unmapped-identity error.
func DirectoryNotFound(message string) *AppError {
	return &AppError{Code: ErrCodeDirectoryNotFound, Message: message}
}

// DirectoryNotFoundf creates a new unmapped-identity error with formatted message.
func DirectoryNotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeDirectoryNotFound, Message: fmt.Sprintf(format, args...)}
}

// DirectoryTransient creates a new transient directory error.
func DirectoryTransient(message string) *AppError {
	return &AppError{Code: ErrCodeDirectoryTransient, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// CodeOf extracts the ErrorCode from an error chain, defaulting to internal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsProviderUnavailable checks for the transient provider code.
func IsProviderUnavailable(err error) bool { return isCode(err, ErrCodeProviderUnavailable) }

// IsIdentityNotFound checks for the identity-not-found code.
func IsIdentityNotFound(err error) bool { return isCode(err, ErrCodeIdentityNotFound) }

// IsCredentialExpired checks for the credential-expired code.
func IsCredentialExpired(err error) bool { return isCode(err, ErrCodeCredentialExpired) }

// IsEmailNotVerified checks for the verification-gate code.
func IsEmailNotVerified(err error) bool { return isCode(err, ErrCodeEmailNotVerified) }

// IsDirectoryNotFound checks for the unmapped-identity code.
func IsDirectoryNotFound(err error) bool { return isCode(err, ErrCodeDirectoryNotFound) }

// IsDirectoryTransient checks for the transient directory code.
func IsDirectoryTransient(err error) bool { return isCode(err, ErrCodeDirectoryTransient) }

// IsPersistedStore checks for the local-store code.
func IsPersistedStore(err error) bool { return isCode(err, ErrCodePersistedStore) }

// ForcesSignOut reports whether the engine must force a provider sign-out and
// deny the session for this error. Only the security-critical codes qualify;
// transient and directory errors never do.
func ForcesSignOut(err error) bool {
	switch CodeOf(err) {
	case ErrCodeIdentityNotFound, ErrCodeCredentialExpired, ErrCodeEmailNotVerified:
		return true
	default:
		return false
	}
}
