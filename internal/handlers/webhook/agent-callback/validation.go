package agentcallback

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/common/validation"
	"growify-relay/internal/models"
)

const (
	SignatureHeader = "x-webhook-signature"

	processFailedMessage  = "Failed to process webhook callback"
	invalidPayloadMessage = "Invalid callback payload"
)

// callbackSchema only pins the shapes the handler reads; everything else is
// passed through untouched.
var callbackSchema = validation.MustCompileDocumentSchema(`{
	"type": "object",
	"properties": {
		"sessionId":     {"type": "string"},
		"status":        {"type": "string"},
		"transcript":    {"type": ["array", "null"]},
		"emotions":      {"type": ["array", "null"]},
		"extractedData": {"type": ["object", "null"]}
	}
}`)

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the header value against the expected digest in
// constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := Sign(secret, body)
	got := strings.ToLower(strings.TrimSpace(signature))
	return hmac.Equal([]byte(got), []byte(expected))
}

// parseEvent decodes and shape-checks a callback body.
func parseEvent(body []byte) (*models.CallbackEvent, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.NewInternalError(processFailedMessage, err)
	}

	result, err := callbackSchema.Validate(doc)
	if err != nil {
		return nil, apperrors.NewInternalError(processFailedMessage, err)
	}
	if !result.Valid {
		return nil, apperrors.NewValidationError(invalidPayloadMessage, strings.Join(result.GetErrorMessages(), "; "))
	}

	var event models.CallbackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, apperrors.NewInternalError(processFailedMessage, err)
	}
	return &event, nil
}
