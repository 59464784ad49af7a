package businessanalyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"growify-relay/internal/common/config"
	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/metrics"
	"growify-relay/internal/models"
)

const Endpoint = "business-analyzer"

type Handler struct {
	config    *Config
	logger    logger.Logger
	generator ReportGenerator
	errors    *apperrors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	// Generator overrides the Gemini client built from the API key.
	Generator ReportGenerator
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", Endpoint, err)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"endpoint": Endpoint})

	generator := opts.Generator
	if generator == nil && handlerConfig.APIKey != "" {
		g, err := NewGenAIGenerator(context.Background(), handlerConfig.APIKey, handlerConfig.Model)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Endpoint, err)
		}
		generator = g
	}
	if generator == nil {
		loggerInstance.Warn("No report generator configured, returning canned reports", nil)
	}

	return &Handler{
		config:    handlerConfig,
		logger:    loggerInstance,
		generator: generator,
		errors:    apperrors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.analyze(w, r)
	case http.MethodGet:
		h.jobStatus(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorBody{Error: "Method not allowed"})
	}
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	metrics.RelayRequestsActive.WithLabelValues(Endpoint).Inc()
	defer metrics.RelayRequestsActive.WithLabelValues(Endpoint).Dec()
	defer func() {
		metrics.RelayRequestDuration.WithLabelValues(Endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if !h.config.Enabled {
		h.fail(w, r, apperrors.NewEndpointDisabledError(Endpoint))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.fail(w, r, apperrors.NewReadBodyError(processFailedMessage, err))
		return
	}

	input, err := parseInput(body, h.config.EnforceBounds)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	jobID := models.NewJobID()
	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	report, err := h.Execute(ctx, input)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.RelayRequestsTotal.WithLabelValues(Endpoint, string(stdErr.Code)).Inc()
		h.logger.Error("Report generation failed", map[string]interface{}{
			"jobId": jobID,
			"code":  stdErr.Code,
			"error": stdErr.Details,
		})
		apperrors.WriteJSON(w, http.StatusInternalServerError, FailureResponse{
			Success: false,
			Error:   stdErr.Message,
			Message: stdErr.Details,
			JobID:   jobID,
			Code:    string(stdErr.Code),
		})
		return
	}

	h.logger.Info("Business analyzer report generated", map[string]interface{}{
		"jobId":    jobID,
		"canned":   h.generator == nil,
		"duration": time.Since(startTime).String(),
	})

	metrics.RelayRequestsTotal.WithLabelValues(Endpoint, "success").Inc()
	apperrors.WriteJSON(w, http.StatusOK, models.AnalysisReport{
		Success:   true,
		JobID:     jobID,
		Report:    report,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Execute produces the report text: the canned report when no generator is
// configured, otherwise exactly one generator call.
func (h *Handler) Execute(ctx context.Context, input *models.BusinessMetrics) (string, error) {
	if h.generator == nil {
		report, err := CannedReport(input)
		if err != nil {
			return "", apperrors.NewInternalError(processFailedMessage, err)
		}
		return report, nil
	}

	prompt, err := BuildPrompt(input)
	if err != nil {
		return "", apperrors.NewInternalError(processFailedMessage, err)
	}

	report, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.OutboundCallsTotal.WithLabelValues(Endpoint, "failure").Inc()
		return "", apperrors.NewLLMError(err)
	}
	metrics.OutboundCallsTotal.WithLabelValues(Endpoint, "success").Inc()
	return report, nil
}

func (h *Handler) jobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		apperrors.WriteJSON(w, http.StatusBadRequest, apperrors.ErrorBody{Error: missingJobIDMessage})
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, JobStatusResponse{
		Success: false,
		Message: jobLookupMessage,
		JobID:   jobID,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.RelayRequestsTotal.WithLabelValues(Endpoint, string(stdErr.Code)).Inc()
	h.errors.HandleRequestError(w, r, stdErr)
}
