package mocks

import (
	"context"

	"github.com/you/faceauthsvc/domain"
)

// MockStepUpService implements domain.StepUpService for testing
type MockStepUpService struct {
	OpenFunc   func(ctx context.Context, account *domain.Account) (string, error)
	VerifyFunc func(ctx context.Context, stepUpToken, code string) (*domain.StepUpClaim, error)
}

// NewMockStepUpService creates a new MockStepUpService with default behaviors
func NewMockStepUpService() *MockStepUpService {
	return &MockStepUpService{}
}

// Open creates a challenge
func (m *MockStepUpService) Open(ctx context.Context, account *domain.Account) (string, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, account)
	}
	// Default behavior: deterministic token
	return "stepup_" + account.ID, nil
}

// Verify checks a code
func (m *MockStepUpService) Verify(ctx context.Context, stepUpToken, code string) (*domain.StepUpClaim, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, stepUpToken, code)
	}
	// Default behavior: not found
	return nil, domain.ErrStepUpNotFound
}
