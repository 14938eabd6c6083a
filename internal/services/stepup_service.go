package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/you/faceauthsvc/domain"
)

// StepUpServiceImpl implements domain.StepUpService using Redis persistence.
// A REQUIRE_STEP_UP face decision opens a challenge here; verifying the
// delivered code completes the login.
type StepUpServiceImpl struct {
	notificationSvc domain.NotificationService
	redisClient     *redis.Client
	config          StepUpConfig
}

type StepUpConfig struct {
	CodeLength   int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

type stepUpState struct {
	AccountID string             `json:"account_id"`
	Kind      domain.AccountKind `json:"kind"`
	Code      string             `json:"code"`
}

// NewStepUpService creates a new Redis-based step-up service.
func NewStepUpService(notificationSvc domain.NotificationService, redisClient *redis.Client, config StepUpConfig) domain.StepUpService {
	return &StepUpServiceImpl{
		notificationSvc: notificationSvc,
		redisClient:     redisClient,
		config:          config,
	}
}

// Open implements domain.StepUpService. It returns the opaque challenge
// token handed back to the caller alongside the REQUIRE_STEP_UP decision.
func (s *StepUpServiceImpl) Open(ctx context.Context, account *domain.Account) (string, error) {
	resendKey := fmt.Sprintf("stepup:res:%s:%s", account.Kind, account.ID)

	ttl, err := s.redisClient.TTL(ctx, resendKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if ttl > 0 {
		return "", fmt.Errorf("%w: wait %d seconds", domain.ErrStepUpThrottled, int64(ttl.Seconds()))
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate step-up code: %w", err)
	}

	token := uuid.NewString()
	tokenKey := "stepup:tok:" + token
	attemptsKey := "stepup:att:" + token

	state, err := json.Marshal(stepUpState{
		AccountID: account.ID,
		Kind:      account.Kind,
		Code:      code,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal step-up state: %w", err)
	}

	if err := s.redisClient.Set(ctx, tokenKey, state, s.config.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store step-up challenge: %w", err)
	}
	if err := s.redisClient.Set(ctx, attemptsKey, 0, s.config.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to initialize attempts counter: %w", err)
	}
	if err := s.redisClient.Set(ctx, resendKey, 1, s.config.ResendWindow).Err(); err != nil {
		return "", fmt.Errorf("failed to set resend throttle: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	if err := s.notificationSvc.SendSMS(account.Phone, message); err != nil {
		s.redisClient.Del(ctx, tokenKey, attemptsKey, resendKey)
		return "", fmt.Errorf("failed to send step-up SMS: %w", err)
	}

	return token, nil
}

// Verify implements domain.StepUpService.
func (s *StepUpServiceImpl) Verify(ctx context.Context, stepUpToken, code string) (*domain.StepUpClaim, error) {
	tokenKey := "stepup:tok:" + stepUpToken
	attemptsKey := "stepup:att:" + stepUpToken

	attempts, err := s.redisClient.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to increment attempts: %w", err)
	}

	if attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, tokenKey, attemptsKey)
		return nil, domain.ErrStepUpMaxAttempts
	}

	raw, err := s.redisClient.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrStepUpNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step-up challenge: %w", err)
	}

	var state stepUpState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step-up state: %w", err)
	}

	if state.Code != code {
		return nil, domain.ErrStepUpInvalidCode
	}

	s.redisClient.Del(ctx, tokenKey, attemptsKey)

	return &domain.StepUpClaim{AccountID: state.AccountID, Kind: state.Kind}, nil
}

// generateSecureCode generates a cryptographically secure numeric code.
func (s *StepUpServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.CodeLength)

	for i := 0; i < s.config.CodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
