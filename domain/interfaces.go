package domain

import "context"

// AccountDirectory resolves opaque account identifiers to account records.
// Resolution is a pure lookup; a deleted account surfaces as
// ErrAccountNotFound, which is a legitimate outcome (orphaned template).
type AccountDirectory interface {
	Resolve(ctx context.Context, kind AccountKind, externalID string) (*Account, error)
	SetTemplateEnrolled(ctx context.Context, kind AccountKind, externalID string) error
}

// OracleClient talks to the external biometric oracle. One Identify call
// covers matching against all enrolled templates and liveness evaluation in
// a single round trip; the engine never iterates candidates itself.
type OracleClient interface {
	Enroll(ctx context.Context, kind AccountKind, externalID string, frames []string) error
	Identify(ctx context.Context, session *CaptureSession) (*OracleVerdict, error)
}

// AttemptLedger appends immutable audit records. There is no read, update or
// delete surface.
type AttemptLedger interface {
	Append(ctx context.Context, record *AttemptRecord) error
}

// FaceAuthService is the face-login decision engine.
type FaceAuthService interface {
	RegisterTemplate(ctx context.Context, kind AccountKind, accountID string, frames []string) (*EnrollmentResult, error)
	Identify(ctx context.Context, session *CaptureSession) (*FaceLoginResult, error)
	CompleteStepUp(ctx context.Context, stepUpToken, code string) (*FaceLoginResult, error)
}

// StepUpService manages the short-lived second-factor challenge opened when
// a face decision is REQUIRE_STEP_UP.
type StepUpService interface {
	Open(ctx context.Context, account *Account) (string, error)
	Verify(ctx context.Context, stepUpToken, code string) (*StepUpClaim, error)
}

// SessionRepository defines session data access operations.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// TokenService defines bearer token operations.
type TokenService interface {
	GenerateAccessToken(subjectID, role, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// NotificationService delivers out-of-band messages (step-up codes).
type NotificationService interface {
	SendSMS(to, message string) error
}
