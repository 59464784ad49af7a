package relay

import (
	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/models"
)

// FallbackPolicy decides what a demo request sees when the agent webhook
// call fails.
type FallbackPolicy interface {
	Name() string
	OnFailure(req *Request, cause error) (models.AgentResponse, error)
}

// DemoModeFallback answers every failed webhook call with a simulated
// "initiated" response so the marketing site always shows success.
type DemoModeFallback struct{}

func (DemoModeFallback) Name() string { return "demo" }

func (DemoModeFallback) OnFailure(req *Request, _ error) (models.AgentResponse, error) {
	sessionID := req.Payload.SessionID
	resp := models.AgentResponse{
		"success":           true,
		"sessionId":         sessionID,
		"status":            models.StatusInitiated,
		"message":           req.SimulatedMessage,
		"estimatedWaitTime": req.DefaultWait,
		"callId":            models.CallIDFor(sessionID),
	}
	if req.SimulatedCalendar != nil {
		resp["calendarIntegration"] = *req.SimulatedCalendar
	}
	return resp, nil
}

// StrictFallback surfaces the failure to the caller as a 502 or 504.
type StrictFallback struct{}

func (StrictFallback) Name() string { return "strict" }

func (StrictFallback) OnFailure(req *Request, cause error) (models.AgentResponse, error) {
	return nil, apperrors.NewWebhookError(req.WebhookURL, cause)
}

// PolicyFor maps the relay.fallback setting to a policy. Unknown values
// resolve to strict.
func PolicyFor(name string) FallbackPolicy {
	if name == "demo" {
		return DemoModeFallback{}
	}
	return StrictFallback{}
}
