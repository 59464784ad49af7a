package models

// CallStatus values the automation platform reports back.
const (
	CallStatusStarted           = "call_started"
	CallStatusTranscriptUpdate  = "transcript_update"
	CallStatusEmotionDetected   = "emotion_detected"
	CallStatusDataExtracted     = "data_extracted"
	CallStatusAppointmentBooked = "appointment_booked"
	CallStatusCompleted         = "call_completed"
	CallStatusFailed            = "call_failed"

	StatusLeadQualified = "lead_qualified"
	ActionEndCall       = "end_call"
)

// CallbackEvent is an asynchronous call-status notification. Everything but
// sessionId and status is passed through without interpretation.
type CallbackEvent struct {
	SessionID     string                 `json:"sessionId"`
	Status        string                 `json:"status"`
	Event         interface{}            `json:"event,omitempty"`
	Customer      interface{}            `json:"customer,omitempty"`
	Transcript    []interface{}          `json:"transcript,omitempty"`
	Emotions      []interface{}          `json:"emotions,omitempty"`
	ExtractedData map[string]interface{} `json:"extractedData,omitempty"`
	Duration      interface{}            `json:"duration,omitempty"`
	Error         interface{}            `json:"error,omitempty"`
	Reason        interface{}            `json:"reason,omitempty"`
}

// CustomerContact pulls name, email and phone out of the free-form customer
// object when present.
func (e *CallbackEvent) CustomerContact() Customer {
	var c Customer
	m, ok := e.Customer.(map[string]interface{})
	if !ok {
		return c
	}
	c.Name, _ = m["name"].(string)
	c.Email, _ = m["email"].(string)
	c.Phone, _ = m["phone"].(string)
	return c
}

// FinalResults is the record built when a call completes.
type FinalResults struct {
	SessionID     string                 `json:"sessionId"`
	Status        string                 `json:"status"`
	Duration      interface{}            `json:"duration,omitempty"`
	Transcript    []interface{}          `json:"transcript,omitempty"`
	Emotions      []interface{}          `json:"emotions,omitempty"`
	ExtractedData map[string]interface{} `json:"extractedData,omitempty"`
	LeadScore     float64                `json:"leadScore"`
	Timestamp     string                 `json:"timestamp"`
}

// LeadQualificationPayload is forwarded once per completed call.
type LeadQualificationPayload struct {
	SessionID     string                 `json:"sessionId"`
	Customer      interface{}            `json:"customer,omitempty"`
	LeadScore     float64                `json:"leadScore"`
	Transcript    []interface{}          `json:"transcript,omitempty"`
	Emotions      []interface{}          `json:"emotions,omitempty"`
	ExtractedData map[string]interface{} `json:"extractedData,omitempty"`
	Duration      interface{}            `json:"duration,omitempty"`
	Timestamp     string                 `json:"timestamp"`
	Status        string                 `json:"status"`
	Source        string                 `json:"source"`
	Action        string                 `json:"action"`
}
