package mocks

import (
	"context"
	"sync"

	"github.com/you/faceauthsvc/domain"
)

// MockAttemptLedger implements domain.AttemptLedger for testing. Appended
// records are retained so tests can assert the exactly-one-record invariant;
// access is synchronized for concurrency tests.
type MockAttemptLedger struct {
	AppendFunc func(ctx context.Context, record *domain.AttemptRecord) error

	mu      sync.Mutex
	records []*domain.AttemptRecord
}

// NewMockAttemptLedger creates a new MockAttemptLedger with default behaviors
func NewMockAttemptLedger() *MockAttemptLedger {
	return &MockAttemptLedger{}
}

// Append records an attempt
func (m *MockAttemptLedger) Append(ctx context.Context, record *domain.AttemptRecord) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// Records returns a snapshot of all appended records.
func (m *MockAttemptLedger) Records() []*domain.AttemptRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.AttemptRecord, len(m.records))
	copy(out, m.records)
	return out
}
