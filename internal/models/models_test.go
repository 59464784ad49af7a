package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionID_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := NewSessionID()
		assert.True(t, IsSessionID(id), id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewJobID_Format(t *testing.T) {
	id := NewJobID()
	assert.True(t, IsJobID(id), id)
	assert.False(t, IsSessionID(id))
}

func TestCallIDFor(t *testing.T) {
	id := NewSessionID()
	callID := CallIDFor(id)
	assert.True(t, strings.HasPrefix(callID, "call_session_"))
	assert.Equal(t, "call_"+id, callID)
}

func TestAgentResponse_Accessors(t *testing.T) {
	var empty AgentResponse
	assert.Empty(t, empty.CallID())
	assert.Nil(t, empty.CalendarIntegration())

	r := AgentResponse{"callId": "call_xyz", "estimatedWaitTime": "10 seconds", "calendarIntegration": map[string]interface{}{"status": "connected"}}
	assert.Equal(t, "call_xyz", r.CallID())
	assert.Equal(t, "10 seconds", r.EstimatedWaitTime())
	assert.NotNil(t, r.CalendarIntegration())

	numeric := AgentResponse{"callId": 42.0}
	assert.Empty(t, numeric.CallID())
}

func TestDemoCalendar_CopiesSlots(t *testing.T) {
	cal := DemoCalendar("team@example.com")
	cal.AvailableSlots[0] = "changed"

	assert.Equal(t, "connected", cal.Status)
	assert.Equal(t, "team@example.com", cal.CalendarID)
	assert.Len(t, cal.AvailableSlots, 5)
	assert.Equal(t, "Monday, Dec 16 - 10:00 AM", DemoAvailableSlots[0])
}

func TestCalculateLeadScore(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		emotions   []string
		want       int
	}{
		{"neutral conversation", "Hello, tell me about pricing", nil, 50},
		{"positive terms", "Yes, I am definitely interested, sounds great", nil, 90},
		{"negative terms", "I am busy, maybe later", nil, 5},
		{"not interested also hits no and interested", "I'm not interested", nil, 30},
		{"emotions", "hello", []string{"happy", "Excited", "sad"}, 55},
		{"clamped low", "no, busy, later, maybe", []string{"angry", "frustrated"}, 0},
		{"clamped high", "yes sure definitely great excellent perfect interested", []string{"happy"}, 100},
		{"substring inside know", "I know, call me tomorrow", nil, 35},
		{"substring inside yesterday", "yesterday was great", nil, 70},
		{"term counted once", "no no no", nil, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateLeadScore(tt.transcript, tt.emotions))
		})
	}
}

func TestTranscriptTextAndEmotionLabels(t *testing.T) {
	transcript := []interface{}{
		"hi there",
		map[string]interface{}{"speaker": "customer", "text": "yes please"},
		map[string]interface{}{"speaker": "agent"},
		12.0,
	}
	assert.Equal(t, "hi there yes please", TranscriptText(transcript))

	emotions := []interface{}{"happy", map[string]interface{}{"emotion": "excited"}, map[string]interface{}{"label": "sad"}, nil}
	assert.Equal(t, []string{"happy", "excited", "sad"}, EmotionLabels(emotions))
}

func TestPhoneFormatting(t *testing.T) {
	assert.Equal(t, "+91 9876543210", FormatPhoneNumber("98765 43210"))
	assert.Equal(t, "+91 9876543210", FormatPhoneNumber("+91-98765-43210"))
	assert.Equal(t, "+1 415 555 0100", FormatPhoneNumber("+1 415 555 0100"))

	assert.Equal(t, "+919876543210", E164("98765 43210"))
	assert.Equal(t, "+919876543210", E164("+91 98765 43210"))
	assert.Equal(t, "+14155550100", E164("+1 415 555 0100"))
	assert.Equal(t, "", E164("12345"))
}

func TestCallbackEvent_CustomerContact(t *testing.T) {
	e := CallbackEvent{Customer: map[string]interface{}{"name": "Priya", "email": "priya@example.com", "phone": "9876543210"}}
	assert.Equal(t, Customer{Name: "Priya", Email: "priya@example.com", Phone: "9876543210"}, e.CustomerContact())

	assert.Equal(t, Customer{}, (&CallbackEvent{Customer: "Priya"}).CustomerContact())
}
