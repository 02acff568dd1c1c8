package testhelpers

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipeshare/backend/internal/service"
)

// MockMailer is a mock implementation of service.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

// SentMail is one message captured by RecordingMailer
type SentMail struct {
	Kind  string
	To    string
	Token string
}

// RecordingMailer captures outgoing mail so tests can read the tokens
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (r *RecordingMailer) SendVerificationEmail(_ context.Context, to, token string) error {
	return r.record("verification", to, token)
}

func (r *RecordingMailer) SendPasswordResetEmail(_ context.Context, to, token string) error {
	return r.record("password_reset", to, token)
}

func (r *RecordingMailer) record(kind, to, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, SentMail{Kind: kind, To: to, Token: token})
	return nil
}

// Last returns the most recent message of kind
func (r *RecordingMailer) Last(kind string) (SentMail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Sent) - 1; i >= 0; i-- {
		if r.Sent[i].Kind == kind {
			return r.Sent[i], true
		}
	}
	return SentMail{}, false
}

// MemoryImageStore keeps uploaded images in memory
type MemoryImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Objects: make(map[string][]byte)}
}

func (s *MemoryImageStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = data
	return "/uploads/" + key, nil
}

func (s *MemoryImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

var (
	_ service.Mailer     = (*MockMailer)(nil)
	_ service.Mailer     = (*RecordingMailer)(nil)
	_ service.ImageStore = (*MemoryImageStore)(nil)
)
