package domain

import "errors"

// Oracle errors
var (
	// ErrOracleUnavailable covers any transport failure, timeout or
	// oracle-side 5xx. A clean "no such face" verdict is not an error.
	ErrOracleUnavailable = errors.New("face oracle unavailable")
	ErrEnrollmentFailed  = errors.New("face enrollment failed")
)

// Directory errors
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Ledger errors
var (
	// ErrLedgerWriteFailed is logged at the infrastructure layer but never
	// changes the caller-visible decision.
	ErrLedgerWriteFailed = errors.New("attempt ledger write failed")
)

// Step-up errors
var (
	ErrStepUpNotFound    = errors.New("step-up challenge not found")
	ErrStepUpExpired     = errors.New("step-up challenge has expired")
	ErrStepUpInvalidCode = errors.New("invalid step-up code")
	ErrStepUpMaxAttempts = errors.New("maximum step-up attempts exceeded")
	ErrStepUpThrottled   = errors.New("step-up resend limit exceeded")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)
