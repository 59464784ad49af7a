package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, msg)
}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, msg)
}

func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeSignatureInvalid, http.StatusUnauthorized},
		{ErrCodeUnknownSession, http.StatusNotFound},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeEndpointDisabled, http.StatusServiceUnavailable},
		{ErrCodeWebhookFailed, http.StatusBadGateway},
		{ErrCodeWebhookTimeout, http.StatusGatewayTimeout},
		{ErrCodeLLMFailed, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFor(tt.code))
		})
	}
}

func TestNewWebhookError_ClassifiesDeadline(t *testing.T) {
	timeout := NewWebhookError("https://hooks.example.com", fmt.Errorf("post: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeWebhookTimeout, timeout.Code)
	assert.True(t, stderrors.Is(timeout, context.DeadlineExceeded))

	refused := NewWebhookError("https://hooks.example.com", stderrors.New("connection refused"))
	assert.Equal(t, ErrCodeWebhookFailed, refused.Code)
	assert.Equal(t, "upstream", GetErrorCategory(refused.Code))
	assert.True(t, IsRetryable(refused))
}

func TestNewReadBodyError(t *testing.T) {
	tooLarge := NewReadBodyError("Failed to process webhook callback", fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 1024}))
	assert.Equal(t, ErrCodePayloadTooLarge, tooLarge.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, tooLarge.HTTPStatus())
	assert.Equal(t, "validation", GetErrorCategory(tooLarge.Code))

	other := NewReadBodyError("Failed to process webhook callback", stderrors.New("connection reset"))
	assert.Equal(t, ErrCodeInternal, other.Code)
	assert.Equal(t, "Failed to process webhook callback", other.Message)
}

func TestNormalize(t *testing.T) {
	validation := NewValidationError("Missing required fields", "name")
	wrapped := fmt.Errorf("decode: %w", validation)

	assert.Same(t, validation, Normalize(wrapped))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
	assert.False(t, IsRetryable(stderrors.New("boom")))
}

func TestHandleRequestError_ClientErrorIncludesDetails(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/demo/lead", nil)

	h.HandleRequestError(rec, req, NewValidationError("Missing required fields: name, phone, email", "email"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Missing required fields: name, phone, email", body.Error)
	assert.Equal(t, ErrCodeValidationFailed, body.Code)
	assert.Equal(t, "email", body.Details)
	assert.Len(t, log.warns, 1)
	assert.Empty(t, log.errors)
}

func TestHandleRequestError_ServerErrorHidesDetails(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/agent-callback", nil)

	h.HandleRequestError(rec, req, NewInternalError("Failed to process webhook callback", stderrors.New("invalid character '}'")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to process webhook callback", body.Error)
	assert.Empty(t, body.Details)
	assert.Len(t, log.errors, 1)
}
