package forms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubmitter(t *testing.T, baseURL string, mask bool) *Submitter {
	t.Helper()
	s, err := NewSubmitter(SubmitterOptions{
		BaseURL:      baseURL,
		Client:       httpclient.NewClient(2 * time.Second),
		MaskFailures: mask,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s
}

func TestSubmit_ValidationBlocksNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	s := newTestSubmitter(t, server.URL, true)
	form := validAnalyzerForm()
	form.CustomerRetentionRate = "150"

	result, err := s.Submit(context.Background(), form)

	assert.Nil(t, result)
	assert.IsType(t, FieldErrors{}, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmit_DemoSuccess(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/demo/appointment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"sessionId":"session_1_abcdefghi"}`))
	}))
	defer server.Close()

	s := newTestSubmitter(t, server.URL+"/", false)
	result, err := s.Submit(context.Background(), DemoForm{
		Name: "Asha", Phone: "9876543210", Email: "asha@example.com", Type: "appointment",
	})

	require.NoError(t, err)
	assert.Equal(t, StateSuccess, result.State)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "session_1_abcdefghi", result.Body["sessionId"])
	assert.False(t, result.Masked)
	assert.Equal(t, "appointment", got["demoType"])
	assert.Equal(t, StateSuccess, s.State())
}

func TestSubmit_FailureMasked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	s := newTestSubmitter(t, url, true)
	result, err := s.Submit(context.Background(), DemoForm{Name: "Asha", Phone: "1", Type: "lead"})

	require.NoError(t, err)
	assert.Equal(t, StateSuccess, result.State)
	assert.True(t, result.Masked)
}

func TestSubmit_FailureSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to generate analysis"}`))
	}))
	defer server.Close()

	s := newTestSubmitter(t, server.URL, false)
	result, err := s.Submit(context.Background(), validAnalyzerForm())

	require.NoError(t, err)
	assert.Equal(t, StateError, result.State)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "Failed to generate analysis")
	assert.Equal(t, StateError, s.State())

	s.Reset()
	assert.Equal(t, StateIdle, s.State())
}

func TestNewSubmitter_RequiresBaseURL(t *testing.T) {
	_, err := NewSubmitter(SubmitterOptions{Client: httpclient.NewClient(time.Second)})
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "error", StateError.String())
}
