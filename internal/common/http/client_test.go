// internal/common/http/client_test.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON_SendsHeadersAndBody(t *testing.T) {
	var gotAuth, gotType string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"callId":"call_abc"}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, WithBearerToken("demo-token"))
	resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{"sessionId": "session_1_x"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer demo-token", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "session_1_x", gotBody["sessionId"])

	obj, err := resp.DecodeObject()
	require.NoError(t, err)
	assert.Equal(t, "call_abc", obj["callId"])
}

func TestPostJSON_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp, err := NewClient(time.Second).PostJSON(context.Background(), server.URL, struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPostJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(5*time.Second).PostJSON(ctx, server.URL, struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestResponse_DecodeObjectRejectsNonObject(t *testing.T) {
	_, err := (&Response{StatusCode: 200, Body: []byte(`"ok"`)}).DecodeObject()
	assert.Error(t, err)

	_, err = (&Response{StatusCode: 200, Body: []byte(`null`)}).DecodeObject()
	assert.Error(t, err)
}

func TestPostRaw_SendsExtraHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.Header.Get("X-Webhook-Signature"))
		assert.Empty(t, r.Header.Get("X-Empty"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"status":"call_started"}`, string(body))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(time.Second,
		WithHeader("x-webhook-signature", "abc123"),
		WithHeader("x-empty", ""),
	)
	resp, err := client.PostRaw(context.Background(), server.URL, []byte(`{"status":"call_started"}`))
	require.NoError(t, err)
	assert.True(t, resp.OK())
}
