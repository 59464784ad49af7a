package demo

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(body string) (*models.DemoRequest, error) {
	return ParseRequest(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode apperrors.ErrorCode
		wantMsg  string
		plainErr bool
	}{
		{name: "valid", body: `{"name":"Asha","phone":"9876543210","email":"a@b.com","extra":1}`},
		{name: "missing", body: `{"name":"Asha"}`, wantCode: apperrors.ErrCodeValidationFailed, wantMsg: MissingFieldsMessage},
		{name: "wrong type", body: `{"name":42,"phone":"9876543210","email":"a@b.com"}`, wantCode: apperrors.ErrCodeValidationFailed, wantMsg: "Input validation failed"},
		{name: "not json", body: `name=Asha`, plainErr: true},
		{name: "json null", body: `null`, plainErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parse(tt.body)
			switch {
			case tt.plainErr:
				require.Error(t, err)
				var stdErr *apperrors.StandardError
				assert.False(t, errors.As(err, &stdErr))
			case tt.wantCode != "":
				var stdErr *apperrors.StandardError
				require.True(t, errors.As(err, &stdErr))
				assert.Equal(t, tt.wantCode, stdErr.Code)
				assert.Equal(t, tt.wantMsg, stdErr.Message)
			default:
				require.NoError(t, err)
				assert.Equal(t, "Asha", req.Name)
			}
		})
	}
}

func TestBuildPayload_DefaultsCallbackURL(t *testing.T) {
	req := &models.DemoRequest{Name: "Asha", Phone: "9876543210", Email: "a@b.com"}
	p := BuildPayload(req, "session_1_abc", PayloadOptions{
		Intent:             models.IntentLeadQualification,
		DemoType:           models.DemoTypeLeadQualification,
		DefaultCallbackURL: "http://localhost:3001/api/webhook/agent-callback",
	})
	assert.Equal(t, "http://localhost:3001/api/webhook/agent-callback", p.CallbackURL)
	assert.Equal(t, "growifyai_demo", p.Metadata.Source)
	assert.NotEmpty(t, p.Metadata.Timestamp)

	req.CallbackURL = "https://site.test/cb"
	p = BuildPayload(req, "session_1_abc", PayloadOptions{DefaultCallbackURL: "unused"})
	assert.Equal(t, "https://site.test/cb", p.CallbackURL)
}

func TestResolveWebhook(t *testing.T) {
	assert.Equal(t, "configured", ResolveWebhook("override", "configured", false))
	assert.Equal(t, "override", ResolveWebhook("override", "configured", true))
	assert.Equal(t, "configured", ResolveWebhook("", "configured", true))
}

func TestResponse_FallsBackToDefaults(t *testing.T) {
	resp := Response("session_1_abc", "ok", "30 seconds", "http://agent.test", models.AgentResponse{})
	assert.Equal(t, "call_session_1_abc", resp.CallID)
	assert.Equal(t, "30 seconds", resp.EstimatedWaitTime)
	assert.True(t, resp.Success)
	assert.Equal(t, "initiated", resp.Status)
}
