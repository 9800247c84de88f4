package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

type fakeVerifier struct {
	valid string
}

func (f fakeVerifier) Verify(_ context.Context, token string) error {
	if token == "" || token != f.valid {
		return errors.New("unauthorized")
	}
	return nil
}

func gated() http.Handler {
	return RequireSession(fakeVerifier{valid: "tok"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(SessionToken(r.Context())))
	}))
}

// TestRequireSession - header, query parameter and missing token
func TestRequireSession(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.Header.Set(SessionHeader, "tok")
		rec := httptest.NewRecorder()

		gated().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok", rec.Body.String())
	})

	t.Run("query parameter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gated().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/stream?session=tok", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gated().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	})
}

// TestRateLimiter - budget per window and reset after the window
func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "budgets are per IP")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	now = now.Add(5 * time.Minute)
	rl.sweep()
	assert.Empty(t, rl.visitors)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Minute))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}

// TestMetricsUsesRoutePattern - one series per route, not per lead id
func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Delete("/api/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := counterValue(httpRequestsTotal.WithLabelValues("DELETE", "/api/leads/{id}", "204"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/leads/"+id, nil))
	}
	after := counterValue(httpRequestsTotal.WithLabelValues("DELETE", "/api/leads/{id}", "204"))

	assert.Equal(t, 2.0, after-before)
}

func TestRecordCounters(t *testing.T) {
	before := counterValue(leadsSubmitted.WithLabelValues("accepted"))
	RecordLeadSubmission("accepted")
	assert.Equal(t, 1.0, counterValue(leadsSubmitted.WithLabelValues("accepted"))-before)

	before = counterValue(integrationErrors.WithLabelValues("spreadsheet_sync"))
	RecordIntegrationError("spreadsheet_sync")
	assert.Equal(t, 1.0, counterValue(integrationErrors.WithLabelValues("spreadsheet_sync"))-before)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/leads/x", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, float64(http.StatusNotFound), rec["status"])
	assert.Equal(t, "/api/leads/x", rec["path"])
}
