package leadrelay

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"growify-relay/internal/common/config"
	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/metrics"
	"growify-relay/internal/handlers/demo"
	"growify-relay/internal/models"
	"growify-relay/internal/relay"
)

const Endpoint = "lead-relay"

const (
	defaultWait      = "30 seconds"
	successMessage   = "Lead qualification demo started successfully"
	simulatedMessage = "Demo call initiated (simulated)"
	failureMessage   = "Failed to start lead qualification demo"
)

// Relayer is the part of relay.Relayer the handler needs.
type Relayer interface {
	Relay(ctx context.Context, req *relay.Request) (*relay.Result, error)
}

type Handler struct {
	config  *Config
	logger  logger.Logger
	relayer Relayer
	errors  *apperrors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Relayer      Relayer
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", Endpoint, err)
	}
	if opts.Relayer == nil {
		return nil, fmt.Errorf("%s: relayer is required", Endpoint)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"endpoint": Endpoint})

	return &Handler{
		config:  handlerConfig,
		logger:  loggerInstance,
		relayer: opts.Relayer,
		errors:  apperrors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	req, err := demo.ParseRequest(r)
	if err != nil {
		var stdErr *apperrors.StandardError
		if !stderrors.As(err, &stdErr) {
			err = apperrors.NewInternalError(failureMessage, err)
		}
		h.fail(w, r, err)
		return
	}

	resp, err := h.Execute(r.Context(), req, r.UserAgent())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	metrics.RelayRequestsTotal.WithLabelValues(Endpoint, "success").Inc()
	apperrors.WriteJSON(w, http.StatusOK, resp)
}

// Execute relays a validated demo request and builds the response body.
func (h *Handler) Execute(ctx context.Context, req *models.DemoRequest, userAgent string) (*models.DemoResponse, error) {
	sessionID := models.NewSessionID()
	webhookURL := demo.ResolveWebhook(req.AgentWebhook, h.config.WebhookURL, h.config.AllowWebhookOverride)

	payload := demo.BuildPayload(req, sessionID, demo.PayloadOptions{
		Intent:             models.IntentLeadQualification,
		DemoType:           models.DemoTypeLeadQualification,
		DefaultCallbackURL: h.config.DefaultCallbackURL,
		UserAgent:          userAgent,
	})

	result, err := h.relayer.Relay(ctx, &relay.Request{
		Endpoint:         Endpoint,
		WebhookURL:       webhookURL,
		Payload:          payload,
		Timeout:          h.config.Timeout,
		DefaultWait:      defaultWait,
		SimulatedMessage: simulatedMessage,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Lead qualification demo started", map[string]interface{}{
		"sessionId": sessionID,
		"user":      req.Name,
		"phone":     req.Phone,
		"simulated": result.Simulated,
	})

	return demo.Response(sessionID, successMessage, defaultWait, webhookURL, result.Response), nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.RelayRequestsTotal.WithLabelValues(Endpoint, string(stdErr.Code)).Inc()
	h.errors.HandleRequestError(w, r, stdErr)
}
