package agentcallback

import (
	"growify-relay/internal/models"
)

// Ack is the acknowledgment body. Only the fields relevant to the event's
// status are populated.
type Ack struct {
	Success         bool                   `json:"success"`
	Message         string                 `json:"message"`
	SessionID       string                 `json:"sessionId,omitempty"`
	Timestamp       string                 `json:"timestamp,omitempty"`
	TranscriptCount *int                   `json:"transcriptCount,omitempty"`
	Emotion         interface{}            `json:"emotion,omitempty"`
	ExtractedData   map[string]interface{} `json:"extractedData,omitempty"`
	Event           interface{}            `json:"event,omitempty"`
	Customer        interface{}            `json:"customer,omitempty"`
	Results         *models.FinalResults   `json:"results,omitempty"`
	WebhookResponse map[string]interface{} `json:"webhookResponse,omitempty"`
	ShouldEndCall   *bool                  `json:"shouldEndCall,omitempty"`
	Error           interface{}            `json:"error,omitempty"`
	Reason          interface{}            `json:"reason,omitempty"`
	Status          string                 `json:"status,omitempty"`
}

type StatusResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

var knownStatuses = map[string]bool{
	models.CallStatusStarted:           true,
	models.CallStatusTranscriptUpdate:  true,
	models.CallStatusEmotionDetected:   true,
	models.CallStatusDataExtracted:     true,
	models.CallStatusAppointmentBooked: true,
	models.CallStatusCompleted:         true,
	models.CallStatusFailed:            true,
}

// statusLabel keeps the metric label set bounded.
func statusLabel(status string) string {
	if knownStatuses[status] {
		return status
	}
	return "other"
}

// lastEntry mirrors slice(-1): the final element as a one-element slice, or
// an empty slice for an empty input.
func lastEntry(entries []interface{}) []interface{} {
	if len(entries) == 0 {
		return []interface{}{}
	}
	return entries[len(entries)-1:]
}

// LeadScore prefers the platform's numeric leadScore and otherwise scores
// the conversation locally.
func LeadScore(event *models.CallbackEvent) float64 {
	if v, ok := event.ExtractedData["leadScore"].(float64); ok {
		return v
	}
	return float64(models.CalculateLeadScore(
		models.TranscriptText(event.Transcript),
		models.EmotionLabels(event.Emotions),
	))
}

func BuildFinalResults(event *models.CallbackEvent, timestamp string) *models.FinalResults {
	return &models.FinalResults{
		SessionID:     event.SessionID,
		Status:        "completed",
		Duration:      event.Duration,
		Transcript:    event.Transcript,
		Emotions:      event.Emotions,
		ExtractedData: event.ExtractedData,
		LeadScore:     LeadScore(event),
		Timestamp:     timestamp,
	}
}

func BuildLeadQualificationPayload(event *models.CallbackEvent, final *models.FinalResults) *models.LeadQualificationPayload {
	return &models.LeadQualificationPayload{
		SessionID:     event.SessionID,
		Customer:      event.Customer,
		LeadScore:     final.LeadScore,
		Transcript:    event.Transcript,
		Emotions:      event.Emotions,
		ExtractedData: event.ExtractedData,
		Duration:      event.Duration,
		Timestamp:     final.Timestamp,
		Status:        models.StatusLeadQualified,
		Source:        models.SourceGrowifyDemo,
		Action:        models.ActionEndCall,
	}
}
