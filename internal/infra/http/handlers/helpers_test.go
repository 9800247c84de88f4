package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/infra/localstore"
	"github.com/xavierca1/nesthome-leads/internal/infra/session"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

const testPassword = "correct horse"

// memRemote is an in-memory remote sink keyed like the database one.
type memRemote struct {
	mu    sync.Mutex
	leads []entity.Lead
}

func (m *memRemote) Push(_ context.Context, lead entity.Lead) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.RemoteKey = "key-" + lead.ID
	m.leads = append([]entity.Lead{lead}, m.leads...)
	return lead.RemoteKey, nil
}

func (m *memRemote) List(context.Context) ([]entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Lead{}, m.leads...), nil
}

func (m *memRemote) find(ref string) int {
	for i, l := range m.leads {
		if l.ID == ref || l.RemoteKey == ref {
			return i
		}
	}
	return -1
}

func (m *memRemote) Remove(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(ref)
	if i < 0 {
		return entity.ErrLeadNotFound
	}
	m.leads = append(m.leads[:i], m.leads[i+1:]...)
	return nil
}

func (m *memRemote) UpdateStatus(_ context.Context, ref string, status entity.LeadStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(ref)
	if i < 0 {
		return entity.ErrLeadNotFound
	}
	m.leads[i].Status = status
	return nil
}

func (m *memRemote) UpdateDetails(_ context.Context, ref string, p entity.LeadDetailsPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(ref)
	if i < 0 {
		return entity.ErrLeadNotFound
	}
	p.Apply(&m.leads[i].LeadDetails)
	return nil
}

func (m *memRemote) Subscribe(func([]entity.Lead)) func() {
	return func() {}
}

type testEnv struct {
	local  *localstore.LeadStore
	remote *memRemote
	auth   *usecase.AdminAuthUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	auth := usecase.NewAdminAuthUseCase(session.NewMemoryStore(), session.NewMemoryCredentials(), 0)
	require.NoError(t, auth.EnsureCredential(context.Background(), testPassword))

	return &testEnv{
		local:  localstore.NewLeadStore(localstore.NewMemoryKV()),
		remote: &memRemote{},
		auth:   auth,
	}
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	s, err := e.auth.Login(context.Background(), testPassword)
	require.NoError(t, err)
	return s.Token
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// sheetsServer answers every webhook call with status and body.
func sheetsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
