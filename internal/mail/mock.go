package mail

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway records calls instead of contacting a provider. It backs
// --dry-run and the tests.
type MockGateway struct {
	mu sync.Mutex

	Sent   []Outgoing
	Drafts []Outgoing

	// SendErr and DraftErr, when set, are returned by the next calls.
	SendErr  error
	DraftErr error
}

// NewMockGateway creates an empty mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Send records msg and returns a sequential message ID.
func (m *MockGateway) Send(_ context.Context, msg Outgoing) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendErr != nil {
		return "", m.SendErr
	}
	m.Sent = append(m.Sent, msg)
	return fmt.Sprintf("msg-%d", len(m.Sent)), nil
}

// CreateDraft records msg and returns a sequential draft ID.
func (m *MockGateway) CreateDraft(_ context.Context, msg Outgoing) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DraftErr != nil {
		return "", m.DraftErr
	}
	m.Drafts = append(m.Drafts, msg)
	return fmt.Sprintf("draft-%d", len(m.Drafts)), nil
}

// Calls returns the total number of successful calls.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent) + len(m.Drafts)
}
