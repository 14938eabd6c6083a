package domain

import "time"

// AccountKind distinguishes the two account populations that share the
// face-login flow.
type AccountKind string

const (
	AccountKindUser  AccountKind = "USER"
	AccountKindAdmin AccountKind = "ADMIN"
)

// Role returns the role string synthesized for tokens and responses.
func (k AccountKind) Role() string {
	if k == AccountKindAdmin {
		return "admin"
	}
	return "user"
}

// Valid reports whether the kind is one of the known values.
func (k AccountKind) Valid() bool {
	return k == AccountKindUser || k == AccountKindAdmin
}

// ChallengeKind identifies the liveness challenge the client rendered.
type ChallengeKind string

const (
	ChallengeBlink      ChallengeKind = "BLINK"
	ChallengeTurnHead   ChallengeKind = "TURN_HEAD"
	ChallengeOpenMouth  ChallengeKind = "OPEN_MOUTH"
	ChallengeReadNumber ChallengeKind = "READ_NUMBER"
)

// CaptureSession is the input unit for one authentication attempt. It is
// constructed per request and discarded after the oracle call.
//
// ChallengePassed is asserted by the client-side challenge evaluator and is
// recorded for audit only; the decision consumes the oracle's own liveness
// verdict.
type CaptureSession struct {
	Frames          []string // base64-encoded image payloads, ordered
	ChallengeKind   ChallengeKind
	ChallengePassed bool
	DeviceID        string // optional, audit correlation only
	SourceAddress   string // recorded for audit, never used for authorization
}

// OracleVerdict is the outcome of one identify round trip. Matched implies
// ExternalID and Kind are set; the reverse does not hold.
type OracleVerdict struct {
	Matched       bool
	ExternalID    string
	Kind          AccountKind
	IsLive        bool
	LivenessScore float64
	Similarity    *float64
	Distance      *float64
}

// Decision is the tri-state outcome of one authentication attempt.
type Decision string

const (
	DecisionLoginSuccess  Decision = "LOGIN_SUCCESS"
	DecisionRequireStepUp Decision = "REQUIRE_STEP_UP"
	DecisionDeny          Decision = "DENY"
)

// AttemptResult classifies an attempt for the audit trail.
type AttemptResult string

const (
	AttemptSuccess       AttemptResult = "SUCCESS"
	AttemptRequireStepUp AttemptResult = "REQUIRE_STEP_UP"
	AttemptLivenessFail  AttemptResult = "LIVENESS_FAIL"
	AttemptNoMatch       AttemptResult = "NO_MATCH"
	AttemptError         AttemptResult = "ERROR"
)

// AttemptRecord is the immutable audit entry written for every processed
// capture session, including oracle failures. AccountID and AccountKind are
// nil when no match was made or the oracle call failed.
type AttemptRecord struct {
	ID              string
	AccountID       *string
	AccountKind     *AccountKind
	SourceAddress   string
	DeviceID        *string
	LivenessScore   float64
	SimilarityScore *float64
	Distance        *float64
	Result          AttemptResult
	CreatedAt       time.Time
}

// Account is the read-only projection consumed from the account directory.
// This engine never creates or mutates accounts; only enrollment flips
// HasEnrolledTemplate.
type Account struct {
	ID                  string
	Email               string
	Username            string // empty for admins
	Name                string
	Phone               string
	Kind                AccountKind
	HasEnrolledTemplate bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AccountProfile is the stripped account projection returned on a full
// login (no template or credential fields).
type AccountProfile struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username,omitempty"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	HasFaceRegistered bool      `json:"hasFaceRegistered"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Profile builds the boundary projection for an account.
func (a *Account) Profile() *AccountProfile {
	return &AccountProfile{
		ID:                a.ID,
		Email:             a.Email,
		Username:          a.Username,
		Name:              a.Name,
		Role:              a.Kind.Role(),
		HasFaceRegistered: a.HasEnrolledTemplate,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// FaceLoginResult is the decision object returned to the caller. Every
// attempt yields a well-formed result; AccessToken and User are present only
// on a full success, StepUpToken only when additional verification is
// required.
type FaceLoginResult struct {
	Success       bool            `json:"success"`
	Decision      Decision        `json:"decision"`
	IsLive        bool            `json:"isLive"`
	LivenessScore float64         `json:"livenessScore"`
	Similarity    *float64        `json:"similarity,omitempty"`
	Distance      *float64        `json:"distance,omitempty"`
	Message       string          `json:"message"`
	AccessToken   string          `json:"accessToken,omitempty"`
	StepUpToken   string          `json:"stepUpToken,omitempty"`
	User          *AccountProfile `json:"user,omitempty"`
}

// EnrollmentResult is returned by RegisterTemplate.
type EnrollmentResult struct {
	AccountID           string `json:"accountId"`
	HasEnrolledTemplate bool   `json:"hasEnrolledTemplate"`
}

// StepUpClaim identifies the account a verified step-up challenge belongs to.
type StepUpClaim struct {
	AccountID string
	Kind      AccountKind
}

// Session represents an authenticated session backing an issued token.
type Session struct {
	ID          string
	SubjectID   string
	SubjectKind AccountKind
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// TokenClaims represents JWT token claims.
type TokenClaims struct {
	SubjectID string `json:"sub"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
