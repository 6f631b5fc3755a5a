package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

// Session error constructors. All map to 401 at the transport layer; the
// distinct codes keep login failures, bad tokens, and vanished admins
// tellable apart in logs and responses.

func ErrInvalidCredentials() *AppError {
	return &AppError{Code: "INVALID_CREDENTIALS", Message: "incorrect email or password", Status: 401}
}

func ErrTokenInvalid() *AppError {
	return &AppError{Code: "TOKEN_INVALID", Message: "session token is invalid", Status: 401}
}

func ErrTokenExpired() *AppError {
	return &AppError{Code: "TOKEN_EXPIRED", Message: "session token has expired", Status: 401}
}

func ErrIdentityNotFound() *AppError {
	return &AppError{Code: "IDENTITY_NOT_FOUND", Message: "admin account no longer exists", Status: 401}
}

// Catalog error constructors.

func ErrUnrecognizedLink(link string) *AppError {
	return &AppError{Code: "UNRECOGNIZED_LINK_FORMAT", Message: fmt.Sprintf("no video id could be extracted from %q", link), Status: 400}
}

// ErrRankInvariant reports a broken rank sequence. It indicates a bug in the
// catalog store, never bad caller input.
func ErrRankInvariant(msg string) *AppError {
	return &AppError{Code: "RANK_INVARIANT", Message: msg, Status: 500}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
