// Package demo holds the request handling shared by the lead and
// appointment demo endpoints.
package demo

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/common/validation"
	"growify-relay/internal/models"
)

// MissingFieldsMessage is returned verbatim with the 400.
const MissingFieldsMessage = "Missing required fields: name, phone, email"

var requiredFields = []string{"name", "phone", "email"}

func intPtr(i int) *int { return &i }

// GetInputSchema describes the demo request body.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:                 "object",
		Required:             requiredFields,
		AdditionalProperties: true,
		Properties: map[string]validation.Property{
			"name": {
				Type:        "string",
				Description: "Visitor name",
				MaxLength:   intPtr(200),
			},
			"phone": {
				Type:        "string",
				Description: "Phone number the agent will call",
				MaxLength:   intPtr(50),
			},
			"email": {
				Type:        "string",
				Description: "Visitor email",
				MaxLength:   intPtr(255),
			},
			"demoType": {
				Type:        "string",
				Description: "Ignored; the endpoint fixes the demo type",
			},
			"agentWebhook": {
				Type:        "string",
				Description: "Per-request webhook override",
				MaxLength:   intPtr(2048),
			},
			"callbackUrl": {
				Type:        "string",
				Description: "Where the agent posts call status updates",
				MaxLength:   intPtr(2048),
			},
			"nxtwaveCalendarId": {
				Type:        "string",
				Description: "Calendar the appointment demo books against",
				MaxLength:   intPtr(255),
			},
		},
	}
}

// ParseRequest reads and validates a demo request body. A body that is not
// JSON is returned as a plain decode error; field problems come back as
// validation errors.
func ParseRequest(r *http.Request) (*models.DemoRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if stderrors.As(err, new(*http.MaxBytesError)) {
			return nil, apperrors.NewPayloadTooLargeError(err)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode body: not a JSON object")
	}

	if missing := validation.MissingFields(fields, requiredFields...); len(missing) > 0 {
		return nil, apperrors.NewValidationError(MissingFieldsMessage, strings.Join(missing, ", "))
	}

	result := validation.ValidateInput(fields, GetInputSchema())
	if !result.Valid {
		return nil, apperrors.NewValidationError(
			"Input validation failed",
			strings.Join(result.GetErrorMessages(), "; "),
		)
	}

	var req models.DemoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return &req, nil
}

// PayloadOptions fixes the parts of the agent payload owned by the endpoint.
type PayloadOptions struct {
	Intent             string
	DemoType           models.DemoType
	DefaultCallbackURL string
	UserAgent          string
}

// BuildPayload assembles the outbound agent payload for a validated request.
func BuildPayload(req *models.DemoRequest, sessionID string, opts PayloadOptions) models.AgentPayload {
	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = opts.DefaultCallbackURL
	}

	return models.AgentPayload{
		SessionID: sessionID,
		Customer: models.Customer{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		},
		Intent:      opts.Intent,
		CallbackURL: callbackURL,
		DemoType:    opts.DemoType,
		Metadata: models.PayloadMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Source:    models.SourceGrowifyDemo,
			UserAgent: opts.UserAgent,
		},
	}
}

// ResolveWebhook picks the per-request override when overrides are allowed.
func ResolveWebhook(override, configured string, allowOverride bool) string {
	if allowOverride && override != "" {
		return override
	}
	return configured
}

// Response builds the 200 body from the relay result, filling callId and
// estimatedWaitTime from the endpoint defaults when the agent omitted them.
func Response(sessionID, message, defaultWait, webhookURL string, agent models.AgentResponse) *models.DemoResponse {
	callID := agent.CallID()
	if callID == "" {
		callID = models.CallIDFor(sessionID)
	}
	wait := agent.EstimatedWaitTime()
	if wait == "" {
		wait = defaultWait
	}

	return &models.DemoResponse{
		Success:           true,
		SessionID:         sessionID,
		Status:            models.StatusInitiated,
		Message:           message,
		CallID:            callID,
		EstimatedWaitTime: wait,
		WebhookURL:        webhookURL,
		AgentResponse:     agent,
	}
}
