package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/you/faceauthsvc/domain"
)

// Messages returned with each decision. The oracle-error text is part of the
// boundary contract.
const (
	msgLoginSuccess    = "Login successful"
	msgStepUpRequired  = "Additional verification required"
	msgNoMatch         = "Face does not match"
	msgLivenessFailed  = "Liveness check failed"
	msgOracleError     = "Face service error"
	msgAccountNotFound = "Account not found for matched face"
)

// FaceAuthConfig carries the engine's timing knobs.
type FaceAuthConfig struct {
	OracleTimeout time.Duration
	SessionTTL    time.Duration
}

// FaceAuthServiceImpl implements domain.FaceAuthService. Each attempt is one
// independent, stateless unit of work: oracle call, conditional directory
// lookup, audit write, response. Exactly one attempt record is written per
// capture session, and no error class escapes Identify as a panic or an
// unhandled failure of the decision itself.
type FaceAuthServiceImpl struct {
	oracle    domain.OracleClient
	directory domain.AccountDirectory
	ledger    domain.AttemptLedger
	sessions  domain.SessionRepository
	tokens    domain.TokenService
	stepUp    domain.StepUpService
	policy    *DecisionPolicy
	config    FaceAuthConfig
	logger    *slog.Logger
}

// NewFaceAuthService creates the decision engine.
func NewFaceAuthService(
	oracle domain.OracleClient,
	directory domain.AccountDirectory,
	ledger domain.AttemptLedger,
	sessions domain.SessionRepository,
	tokens domain.TokenService,
	stepUp domain.StepUpService,
	policy *DecisionPolicy,
	config FaceAuthConfig,
	logger *slog.Logger,
) domain.FaceAuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FaceAuthServiceImpl{
		oracle:    oracle,
		directory: directory,
		ledger:    ledger,
		sessions:  sessions,
		tokens:    tokens,
		stepUp:    stepUp,
		policy:    policy,
		config:    config,
		logger:    logger,
	}
}

// RegisterTemplate implements domain.FaceAuthService. Re-registration for
// the same account overwrites the prior template; the oracle owns that
// semantic.
func (s *FaceAuthServiceImpl) RegisterTemplate(ctx context.Context, kind domain.AccountKind, accountID string, frames []string) (*domain.EnrollmentResult, error) {
	account, err := s.directory.Resolve(ctx, kind, accountID)
	if err != nil {
		return nil, err
	}

	octx, cancel := context.WithTimeout(ctx, s.config.OracleTimeout)
	defer cancel()

	if err := s.oracle.Enroll(octx, kind, account.ID, frames); err != nil {
		return nil, err
	}

	if err := s.directory.SetTemplateEnrolled(ctx, kind, account.ID); err != nil {
		return nil, fmt.Errorf("failed to flag enrollment: %w", err)
	}

	s.logger.Info("face template registered", "account_id", account.ID, "kind", kind)

	return &domain.EnrollmentResult{AccountID: account.ID, HasEnrolledTemplate: true}, nil
}

// Identify implements domain.FaceAuthService.
func (s *FaceAuthServiceImpl) Identify(ctx context.Context, session *domain.CaptureSession) (*domain.FaceLoginResult, error) {
	octx, cancel := context.WithTimeout(ctx, s.config.OracleTimeout)
	verdict, err := s.oracle.Identify(octx, session)
	cancel()

	if err != nil {
		// A timeout is treated identically to any other oracle failure.
		s.logger.Error("oracle identify failed", "error", err, "source", session.SourceAddress)
		s.appendAttempt(ctx, session, &domain.AttemptRecord{Result: domain.AttemptError})
		return &domain.FaceLoginResult{
			Success:  false,
			Decision: domain.DecisionDeny,
			Message:  msgOracleError,
		}, nil
	}

	if !verdict.Matched {
		s.appendAttempt(ctx, session, &domain.AttemptRecord{
			LivenessScore:   verdict.LivenessScore,
			SimilarityScore: verdict.Similarity,
			Distance:        verdict.Distance,
			Result:          domain.AttemptNoMatch,
		})
		return denyResult(verdict, msgNoMatch), nil
	}

	if !verdict.IsLive {
		s.appendAttempt(ctx, session, &domain.AttemptRecord{
			AccountID:       &verdict.ExternalID,
			AccountKind:     &verdict.Kind,
			LivenessScore:   verdict.LivenessScore,
			SimilarityScore: verdict.Similarity,
			Distance:        verdict.Distance,
			Result:          domain.AttemptLivenessFail,
		})
		return denyResult(verdict, msgLivenessFailed), nil
	}

	account, err := s.directory.Resolve(ctx, verdict.Kind, verdict.ExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Orphaned template: a data-integrity event, not a security
			// decision. Logged, but the policy is not evaluated.
			s.logger.Warn("matched face has no backing account",
				"external_id", verdict.ExternalID, "kind", verdict.Kind)
			s.appendAttempt(ctx, session, &domain.AttemptRecord{
				LivenessScore:   verdict.LivenessScore,
				SimilarityScore: verdict.Similarity,
				Distance:        verdict.Distance,
				Result:          domain.AttemptError,
			})
			return denyResult(verdict, msgAccountNotFound), nil
		}
		s.logger.Error("account directory lookup failed", "error", err)
		s.appendAttempt(ctx, session, &domain.AttemptRecord{
			LivenessScore:   verdict.LivenessScore,
			SimilarityScore: verdict.Similarity,
			Distance:        verdict.Distance,
			Result:          domain.AttemptError,
		})
		return denyResult(verdict, msgOracleError), nil
	}

	var distance float64
	if verdict.Distance != nil {
		distance = *verdict.Distance
	}

	switch s.policy.Decide(distance) {
	case domain.DecisionLoginSuccess:
		s.appendAttempt(ctx, session, &domain.AttemptRecord{
			AccountID:       &account.ID,
			AccountKind:     &account.Kind,
			LivenessScore:   verdict.LivenessScore,
			SimilarityScore: verdict.Similarity,
			Distance:        verdict.Distance,
			Result:          domain.AttemptSuccess,
		})

		token, err := s.issueSession(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to issue session: %w", err)
		}

		result := denyResult(verdict, msgLoginSuccess)
		result.Success = true
		result.Decision = domain.DecisionLoginSuccess
		result.AccessToken = token
		result.User = account.Profile()
		return result, nil

	case domain.DecisionRequireStepUp:
		s.appendAttempt(ctx, session, &domain.AttemptRecord{
			AccountID:       &account.ID,
			AccountKind:     &account.Kind,
			LivenessScore:   verdict.LivenessScore,
			SimilarityScore: verdict.Similarity,
			Distance:        verdict.Distance,
			Result:          domain.AttemptRequireStepUp,
		})

		result := denyResult(verdict, msgStepUpRequired)
		result.Decision = domain.DecisionRequireStepUp

		stepUpToken, err := s.stepUp.Open(ctx, account)
		if err != nil {
			// The decision stands; the caller retries the face flow if the
			// challenge could not be delivered.
			s.logger.Error("failed to open step-up challenge", "error", err, "account_id", account.ID)
			return result, nil
		}
		result.StepUpToken = stepUpToken
		return result, nil

	default:
		s.appendAttempt(ctx, session, &domain.AttemptRecord{
			AccountID:       &account.ID,
			AccountKind:     &account.Kind,
			LivenessScore:   verdict.LivenessScore,
			SimilarityScore: verdict.Similarity,
			Distance:        verdict.Distance,
			Result:          domain.AttemptNoMatch,
		})
		return denyResult(verdict, msgNoMatch), nil
	}
}

// CompleteStepUp implements domain.FaceAuthService. A verified code turns a
// REQUIRE_STEP_UP decision into a full login.
func (s *FaceAuthServiceImpl) CompleteStepUp(ctx context.Context, stepUpToken, code string) (*domain.FaceLoginResult, error) {
	claim, err := s.stepUp.Verify(ctx, stepUpToken, code)
	if err != nil {
		return nil, err
	}

	account, err := s.directory.Resolve(ctx, claim.Kind, claim.AccountID)
	if err != nil {
		return nil, err
	}

	token, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return &domain.FaceLoginResult{
		Success:     true,
		Decision:    domain.DecisionLoginSuccess,
		IsLive:      true,
		Message:     msgLoginSuccess,
		AccessToken: token,
		User:        account.Profile(),
	}, nil
}

// issueSession creates a session and signs an access token for it.
func (s *FaceAuthServiceImpl) issueSession(ctx context.Context, account *domain.Account) (string, error) {
	session := &domain.Session{
		ID:          uuid.NewString(),
		SubjectID:   account.ID,
		SubjectKind: account.Kind,
		ExpiresAt:   time.Now().Add(s.config.SessionTTL),
		CreatedAt:   time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return s.tokens.GenerateAccessToken(account.ID, account.Kind.Role(), session.ID)
}

// appendAttempt writes the audit record for one capture session. A ledger
// failure must never change the caller-visible decision, so it is logged
// and swallowed here.
func (s *FaceAuthServiceImpl) appendAttempt(ctx context.Context, session *domain.CaptureSession, record *domain.AttemptRecord) {
	record.SourceAddress = session.SourceAddress
	if session.DeviceID != "" {
		record.DeviceID = &session.DeviceID
	}

	if err := s.ledger.Append(ctx, record); err != nil {
		s.logger.Error("attempt ledger write failed",
			"error", err,
			"result", record.Result,
			"source", record.SourceAddress,
		)
	}
}

// denyResult builds a deny-shaped result carrying the verdict's scores.
func denyResult(verdict *domain.OracleVerdict, message string) *domain.FaceLoginResult {
	return &domain.FaceLoginResult{
		Success:       false,
		Decision:      domain.DecisionDeny,
		IsLive:        verdict.IsLive,
		LivenessScore: verdict.LivenessScore,
		Similarity:    verdict.Similarity,
		Distance:      verdict.Distance,
		Message:       message,
	}
}
