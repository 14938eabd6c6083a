package mocks

import (
	"context"

	"github.com/you/faceauthsvc/domain"
)

// MockFaceAuthService implements domain.FaceAuthService for testing
type MockFaceAuthService struct {
	RegisterTemplateFunc func(ctx context.Context, kind domain.AccountKind, accountID string, frames []string) (*domain.EnrollmentResult, error)
	IdentifyFunc         func(ctx context.Context, session *domain.CaptureSession) (*domain.FaceLoginResult, error)
	CompleteStepUpFunc   func(ctx context.Context, stepUpToken, code string) (*domain.FaceLoginResult, error)
}

// NewMockFaceAuthService creates a new MockFaceAuthService with default behaviors
func NewMockFaceAuthService() *MockFaceAuthService {
	return &MockFaceAuthService{}
}

// RegisterTemplate enrolls a template
func (m *MockFaceAuthService) RegisterTemplate(ctx context.Context, kind domain.AccountKind, accountID string, frames []string) (*domain.EnrollmentResult, error) {
	if m.RegisterTemplateFunc != nil {
		return m.RegisterTemplateFunc(ctx, kind, accountID, frames)
	}
	// Default behavior: success
	return &domain.EnrollmentResult{AccountID: accountID, HasEnrolledTemplate: true}, nil
}

// Identify runs the decision flow
func (m *MockFaceAuthService) Identify(ctx context.Context, session *domain.CaptureSession) (*domain.FaceLoginResult, error) {
	if m.IdentifyFunc != nil {
		return m.IdentifyFunc(ctx, session)
	}
	// Default behavior: deny
	return &domain.FaceLoginResult{Decision: domain.DecisionDeny, Message: "Face does not match"}, nil
}

// CompleteStepUp verifies a step-up code
func (m *MockFaceAuthService) CompleteStepUp(ctx context.Context, stepUpToken, code string) (*domain.FaceLoginResult, error) {
	if m.CompleteStepUpFunc != nil {
		return m.CompleteStepUpFunc(ctx, stepUpToken, code)
	}
	// Default behavior: not found
	return nil, domain.ErrStepUpNotFound
}
