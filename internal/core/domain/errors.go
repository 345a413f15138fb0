package domain

import (
	"errors"
	"strings"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Auth errors. Handlers surface NotFound, bad password and Locked as the
// same 401 message so callers cannot enumerate accounts.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Token errors
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrWrongTokenType = errors.New("wrong token type")
)

// External capability errors
var (
	ErrRetrievalUnavailable  = errors.New("retrieval backend unavailable")
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
)

// PolicyViolations reports every password rule a candidate password failed,
// not just the first one.
type PolicyViolations struct {
	Violations []string
}

func (e *PolicyViolations) Error() string {
	return "password policy violated: " + strings.Join(e.Violations, "; ")
}
