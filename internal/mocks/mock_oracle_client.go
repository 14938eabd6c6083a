package mocks

import (
	"context"

	"github.com/you/faceauthsvc/domain"
)

// MockOracleClient implements domain.OracleClient for testing
type MockOracleClient struct {
	EnrollFunc   func(ctx context.Context, kind domain.AccountKind, externalID string, frames []string) error
	IdentifyFunc func(ctx context.Context, session *domain.CaptureSession) (*domain.OracleVerdict, error)
}

// NewMockOracleClient creates a new MockOracleClient with default behaviors
func NewMockOracleClient() *MockOracleClient {
	return &MockOracleClient{}
}

// Enroll registers a template
func (m *MockOracleClient) Enroll(ctx context.Context, kind domain.AccountKind, externalID string, frames []string) error {
	if m.EnrollFunc != nil {
		return m.EnrollFunc(ctx, kind, externalID, frames)
	}
	// Default behavior: success
	return nil
}

// Identify submits a capture session
func (m *MockOracleClient) Identify(ctx context.Context, session *domain.CaptureSession) (*domain.OracleVerdict, error) {
	if m.IdentifyFunc != nil {
		return m.IdentifyFunc(ctx, session)
	}
	// Default behavior: clean no-match verdict
	return &domain.OracleVerdict{Matched: false, IsLive: true}, nil
}
