package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "growify-relay/internal/common/errors"
	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/models"
	"growify-relay/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func newTestRequest(url string) *Request {
	sessionID := models.NewSessionID()
	return &Request{
		Endpoint:   "lead-relay",
		WebhookURL: url,
		Payload: models.AgentPayload{
			SessionID:   sessionID,
			Customer:    models.Customer{Name: "Asha", Phone: "9876543210", Email: "a@b.com"},
			Intent:      models.IntentLeadQualification,
			CallbackURL: "http://localhost:3001/api/webhook/agent-callback",
			DemoType:    models.DemoTypeLeadQualification,
		},
		Timeout:          time.Second,
		DefaultWait:      "30 seconds",
		SimulatedMessage: "Demo call initiated (simulated)",
	}
}

func newTestRelayer(t *testing.T, fallback FallbackPolicy, reg session.Registry) *Relayer {
	return NewRelayer(Options{
		Client:     httpclient.NewClient(5*time.Second, httpclient.WithBearerToken("secret-token")),
		Fallback:   fallback,
		Sessions:   reg,
		SessionTTL: time.Minute,
		Logger:     logger.NewTestLogger(t),
	})
}

type failingRegistry struct{}

func (failingRegistry) Register(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingRegistry) Exists(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

// ==========================
// Relay
// ==========================

func TestRelay_Success(t *testing.T) {
	var gotAuth, gotContentType string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"callId":"agent-42","estimatedWaitTime":"10 seconds"}`))
	}))
	defer srv.Close()

	reg := session.NewMemoryRegistry()
	r := newTestRelayer(t, DemoModeFallback{}, reg)
	req := newTestRequest(srv.URL)

	res, err := r.Relay(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, res.Simulated)
	assert.Equal(t, "agent-42", res.Response.CallID())
	assert.Equal(t, "10 seconds", res.Response.EstimatedWaitTime())
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, req.Payload.SessionID, gotPayload["sessionId"])
	assert.Equal(t, req.Payload.CallbackURL, gotPayload["callback_url"])
	assert.Equal(t, models.IntentLeadQualification, gotPayload["intent"])

	ok, err := reg.Exists(context.Background(), req.Payload.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelay_FailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx with json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"callId":"should-not-be-used"}`))
			},
		},
		{
			name: "2xx with non-json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`Workflow was started`))
			},
		},
		{
			name: "2xx with json array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[1,2,3]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := newTestRelayer(t, DemoModeFallback{}, nil)
			req := newTestRequest(srv.URL)

			res, err := r.Relay(context.Background(), req)
			require.NoError(t, err)
			assert.True(t, res.Simulated)
			assert.Equal(t, "call_"+req.Payload.SessionID, res.Response.CallID())
			assert.Equal(t, "30 seconds", res.Response.EstimatedWaitTime())
			assert.Equal(t, "Demo call initiated (simulated)", res.Response["message"])
			assert.Equal(t, models.StatusInitiated, res.Response["status"])
			assert.Equal(t, true, res.Response["success"])
		})
	}
}

func TestRelay_UnreachableWebhook_DemoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	r := newTestRelayer(t, DemoModeFallback{}, nil)
	req := newTestRequest(url)
	cal := models.DemoCalendar("cal@example.com")
	req.SimulatedCalendar = &cal

	res, err := r.Relay(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Simulated)
	assert.Equal(t, cal, res.Response["calendarIntegration"])
}

func TestRelay_StrictFallback(t *testing.T) {
	t.Run("upstream error maps to 502", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		r := newTestRelayer(t, StrictFallback{}, nil)
		_, err := r.Relay(context.Background(), newTestRequest(srv.URL))
		require.Error(t, err)

		var stdErr *apperrors.StandardError
		require.True(t, errors.As(err, &stdErr))
		assert.Equal(t, apperrors.ErrCodeWebhookFailed, stdErr.Code)
		assert.Equal(t, http.StatusBadGateway, stdErr.HTTPStatus())
	})

	t.Run("hanging webhook times out with 504", func(t *testing.T) {
		var calls int32
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		r := newTestRelayer(t, StrictFallback{}, nil)
		req := newTestRequest(srv.URL)
		req.Timeout = 50 * time.Millisecond

		start := time.Now()
		_, err := r.Relay(context.Background(), req)
		require.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)

		var stdErr *apperrors.StandardError
		require.True(t, errors.As(err, &stdErr))
		assert.Equal(t, apperrors.ErrCodeWebhookTimeout, stdErr.Code)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestRelay_RegistryFailureDoesNotBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	r := newTestRelayer(t, StrictFallback{}, failingRegistry{})
	res, err := r.Relay(context.Background(), newTestRequest(srv.URL))
	require.NoError(t, err)
	assert.False(t, res.Simulated)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, "demo", PolicyFor("demo").Name())
	assert.Equal(t, "strict", PolicyFor("strict").Name())
	assert.Equal(t, "strict", PolicyFor("").Name())
}
