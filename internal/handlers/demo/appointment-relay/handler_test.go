package appointmentrelay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/models"
	"growify-relay/internal/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRelayer struct {
	mock.Mock
}

func (m *MockRelayer) Relay(ctx context.Context, req *relay.Request) (*relay.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*relay.Result), args.Error(1)
}

func createTestConfig(webhookURL string) *Config {
	return &Config{
		Enabled:            true,
		Timeout:            2 * time.Second,
		WebhookURL:         webhookURL,
		DefaultCallbackURL: "http://localhost:3001/api/webhook/agent-callback",
		CalendarID:         "team@example.com",
	}
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/demo/appointment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestServeHTTP_MissingFields(t *testing.T) {
	relayer := &MockRelayer{}
	h, err := NewHandler(HandlerOptions{CustomConfig: createTestConfig("http://agent.test"), Relayer: relayer, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	rec, out := post(t, h, `{"name":"Ravi","email":"r@x.in"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: name, phone, email", out["error"])
	relayer.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestServeHTTP_InvalidJSON(t *testing.T) {
	h, err := NewHandler(HandlerOptions{CustomConfig: createTestConfig("http://agent.test"), Relayer: &MockRelayer{}, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	rec, out := post(t, h, `not json`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to start appointment booking demo", out["error"])
}

func TestServeHTTP_AgentCalendarIsPassedThrough(t *testing.T) {
	agentCalendar := map[string]interface{}{"status": "connected", "calendarId": "agent-cal", "availableSlots": []interface{}{"Sat 9 AM"}}

	relayer := &MockRelayer{}
	relayer.On("Relay", mock.Anything, mock.MatchedBy(func(req *relay.Request) bool {
		return req.Payload.Intent == "appointment_booking_demo" &&
			req.Payload.DemoType == models.DemoTypeAppointmentBooking &&
			req.DefaultWait == "45 seconds"
	})).Return(&relay.Result{Response: models.AgentResponse{
		"callId":              "c-1",
		"calendarIntegration": agentCalendar,
	}}, nil)

	h, err := NewHandler(HandlerOptions{CustomConfig: createTestConfig("http://agent.test"), Relayer: relayer, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	rec, out := post(t, h, `{"name":"Ravi","phone":"9876543210","email":"r@x.in"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-1", out["callId"])
	assert.Equal(t, "45 seconds", out["estimatedWaitTime"])
	assert.Equal(t, "Appointment booking demo started successfully", out["message"])
	assert.Equal(t, agentCalendar, out["calendarIntegration"])
	relayer.AssertExpectations(t)
}

func TestServeHTTP_FabricatedCalendar(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		calendarID string
	}{
		{
			name:       "configured calendar",
			body:       `{"name":"Ravi","phone":"9876543210","email":"r@x.in"}`,
			calendarID: "team@example.com",
		},
		{
			name:       "requested calendar",
			body:       `{"name":"Ravi","phone":"9876543210","email":"r@x.in","nxtwaveCalendarId":"clinic@example.com"}`,
			calendarID: "clinic@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relayer := &MockRelayer{}
			relayer.On("Relay", mock.Anything, mock.Anything).
				Return(&relay.Result{Response: models.AgentResponse{"ok": true}}, nil)

			h, err := NewHandler(HandlerOptions{CustomConfig: createTestConfig("http://agent.test"), Relayer: relayer, Logger: logger.NewTestLogger(t)})
			require.NoError(t, err)

			rec, out := post(t, h, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			cal, ok := out["calendarIntegration"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "connected", cal["status"])
			assert.Equal(t, tt.calendarID, cal["calendarId"])
			assert.Len(t, cal["availableSlots"], 5)
		})
	}
}

func TestServeHTTP_UnreachableWebhookDemoMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachable := srv.URL
	srv.Close()

	relayer := relay.NewRelayer(relay.Options{
		Client:   httpclient.NewClient(5 * time.Second),
		Fallback: relay.DemoModeFallback{},
		Logger:   logger.NewTestLogger(t),
	})
	h, err := NewHandler(HandlerOptions{CustomConfig: createTestConfig(unreachable), Relayer: relayer, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	rec, out := post(t, h, `{"name":"Ravi","phone":"9876543210","email":"r@x.in"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "call_"+out["sessionId"].(string), out["callId"])
	assert.Equal(t, "45 seconds", out["estimatedWaitTime"])

	agent := out["agentResponse"].(map[string]interface{})
	assert.Equal(t, "Appointment booking demo initiated (simulated)", agent["message"])
	assert.Equal(t, out["calendarIntegration"], agent["calendarIntegration"])
}
