package usecase_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

// MockLocalStore
type MockLocalStore struct {
	mock.Mock
}

func (m *MockLocalStore) Append(ctx context.Context, lead entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLocalStore) ReadAll(ctx context.Context) []entity.Lead {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return []entity.Lead{}
	}
	return args.Get(0).([]entity.Lead)
}

func (m *MockLocalStore) Update(ctx context.Context, id string, fn func(*entity.Lead)) (bool, error) {
	args := m.Called(ctx, id, fn)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocalStore) Remove(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockRemoteSink
type MockRemoteSink struct {
	mock.Mock
}

func (m *MockRemoteSink) Push(ctx context.Context, lead entity.Lead) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteSink) List(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockRemoteSink) Remove(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockRemoteSink) UpdateStatus(ctx context.Context, ref string, status entity.LeadStatus) error {
	args := m.Called(ctx, ref, status)
	return args.Error(0)
}

func (m *MockRemoteSink) UpdateDetails(ctx context.Context, ref string, patch entity.LeadDetailsPatch) error {
	args := m.Called(ctx, ref, patch)
	return args.Error(0)
}

func (m *MockRemoteSink) Subscribe(onChange func([]entity.Lead)) func() {
	m.Called(onChange)
	return func() {}
}

// MockSheets
type MockSheets struct {
	mock.Mock
}

func (m *MockSheets) SyncOne(ctx context.Context, lead entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockSheets) SyncBatch(ctx context.Context, leads []entity.Lead) (usecase.SyncResult, error) {
	args := m.Called(ctx, leads)
	return args.Get(0).(usecase.SyncResult), args.Error(1)
}

// MockForwarder
type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, lead entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendContact(msg *entity.ContactMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

// memLocalStore is a working in-memory slot for flows that read back what they wrote.
type memLocalStore struct {
	mu    sync.Mutex
	leads []entity.Lead
}

func (s *memLocalStore) Append(_ context.Context, lead entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.ID == lead.ID {
			return entity.ErrDuplicateLeadID
		}
	}
	s.leads = append([]entity.Lead{lead}, s.leads...)
	return nil
}

func (s *memLocalStore) ReadAll(context.Context) []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Lead{}, s.leads...)
}

func (s *memLocalStore) Update(_ context.Context, id string, fn func(*entity.Lead)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			fn(&s.leads[i])
			return true, nil
		}
	}
	return false, nil
}

func (s *memLocalStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*entity.Session{}}
}

func (s *memSessions) Save(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *memSessions) Find(_ context.Context, token string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[token], nil
}

func (s *memSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type memCredentials struct {
	hash []byte
}

func (c *memCredentials) PasswordHash(context.Context) ([]byte, error) {
	return c.hash, nil
}

func (c *memCredentials) SetPasswordHash(_ context.Context, hash []byte) error {
	c.hash = hash
	return nil
}
