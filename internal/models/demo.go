package models

// DemoType identifies which voice-agent flow a demo request starts.
type DemoType string

const (
	DemoTypeLeadQualification  DemoType = "lead_qualification"
	DemoTypeAppointmentBooking DemoType = "appointment_booking"
)

const (
	IntentLeadQualification  = "lead_qualification_demo"
	IntentAppointmentBooking = "appointment_booking_demo"

	SourceGrowifyDemo = "growifyai_demo"
	StatusInitiated   = "initiated"
)

// DemoRequest is the body the site's demo forms post.
type DemoRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	DemoType     string `json:"demoType,omitempty"`
	AgentWebhook string `json:"agentWebhook,omitempty"`
	CallbackURL  string `json:"callbackUrl,omitempty"`
	CalendarID   string `json:"nxtwaveCalendarId,omitempty"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// AgentPayload is posted to the automation webhook to start a call.
type AgentPayload struct {
	SessionID   string          `json:"sessionId"`
	Customer    Customer        `json:"customer"`
	Intent      string          `json:"intent"`
	CallbackURL string          `json:"callback_url"`
	DemoType    DemoType        `json:"demoType"`
	Metadata    PayloadMetadata `json:"metadata"`
}

type PayloadMetadata struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	UserAgent string `json:"userAgent"`
}

// AgentResponse is whatever JSON object the automation webhook answers
// with, or the simulated stand-in.
type AgentResponse map[string]interface{}

func (r AgentResponse) stringField(key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}

// CallID returns the agent-assigned call id, if any.
func (r AgentResponse) CallID() string {
	return r.stringField("callId")
}

// EstimatedWaitTime returns the agent's wait estimate, if any.
func (r AgentResponse) EstimatedWaitTime() string {
	return r.stringField("estimatedWaitTime")
}

// CalendarIntegration returns the agent's calendar block, if any.
func (r AgentResponse) CalendarIntegration() interface{} {
	if r == nil {
		return nil
	}
	return r["calendarIntegration"]
}

type CalendarIntegration struct {
	Status         string   `json:"status"`
	CalendarID     string   `json:"calendarId"`
	AvailableSlots []string `json:"availableSlots"`
}

// DemoAvailableSlots are the placeholder slots shown by the appointment demo.
var DemoAvailableSlots = []string{
	"Monday, Dec 16 - 10:00 AM",
	"Tuesday, Dec 17 - 2:00 PM",
	"Wednesday, Dec 18 - 11:00 AM",
	"Thursday, Dec 19 - 3:00 PM",
	"Friday, Dec 20 - 10:30 AM",
}

// DemoCalendar builds the connected-calendar block for calendarID.
func DemoCalendar(calendarID string) CalendarIntegration {
	slots := make([]string, len(DemoAvailableSlots))
	copy(slots, DemoAvailableSlots)
	return CalendarIntegration{
		Status:         "connected",
		CalendarID:     calendarID,
		AvailableSlots: slots,
	}
}

// DemoResponse is returned by both demo endpoints.
type DemoResponse struct {
	Success             bool          `json:"success"`
	SessionID           string        `json:"sessionId"`
	Status              string        `json:"status"`
	Message             string        `json:"message"`
	CallID              string        `json:"callId"`
	EstimatedWaitTime   string        `json:"estimatedWaitTime"`
	WebhookURL          string        `json:"webhookUrl"`
	CalendarIntegration interface{}   `json:"calendarIntegration,omitempty"`
	AgentResponse       AgentResponse `json:"agentResponse"`
}
