// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler writes request errors as JSON with standardized logging
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorBody is the JSON shape every failed request is answered with.
type ErrorBody struct {
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code,omitempty"`
	Details string    `json:"details,omitempty"`
}

// HandleRequestError normalizes err, logs it and writes the response.
// Internal details are only exposed for client-side (4xx) errors.
func (h *ErrorHandler) HandleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	status := stdErr.HTTPStatus()

	fields := map[string]interface{}{
		"code":     stdErr.Code,
		"category": GetErrorCategory(stdErr.Code),
		"status":   status,
		"path":     r.URL.Path,
		"details":  stdErr.Details,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	body := ErrorBody{Error: stdErr.Message, Code: stdErr.Code}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
	} else {
		h.logger.Warn("request rejected", fields)
		body.Details = stdErr.Details
	}

	WriteJSON(w, status, body)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
