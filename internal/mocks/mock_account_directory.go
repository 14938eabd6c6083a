package mocks

import (
	"context"

	"github.com/you/faceauthsvc/domain"
)

// MockAccountDirectory implements domain.AccountDirectory for testing
type MockAccountDirectory struct {
	ResolveFunc             func(ctx context.Context, kind domain.AccountKind, externalID string) (*domain.Account, error)
	SetTemplateEnrolledFunc func(ctx context.Context, kind domain.AccountKind, externalID string) error
}

// NewMockAccountDirectory creates a new MockAccountDirectory with default behaviors
func NewMockAccountDirectory() *MockAccountDirectory {
	return &MockAccountDirectory{}
}

// Resolve looks up an account
func (m *MockAccountDirectory) Resolve(ctx context.Context, kind domain.AccountKind, externalID string) (*domain.Account, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, kind, externalID)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// SetTemplateEnrolled flips the enrollment flag
func (m *MockAccountDirectory) SetTemplateEnrolled(ctx context.Context, kind domain.AccountKind, externalID string) error {
	if m.SetTemplateEnrolledFunc != nil {
		return m.SetTemplateEnrolledFunc(ctx, kind, externalID)
	}
	// Default behavior: success
	return nil
}
