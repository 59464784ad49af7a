package agentcallback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"growify-relay/internal/common/config"
	apperrors "growify-relay/internal/common/errors"
	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/metrics"
	"growify-relay/internal/models"
	"growify-relay/internal/results"
	"growify-relay/internal/session"
)

const Endpoint = "agent-callback"

// Forwarder posts the lead-qualification payload.
type Forwarder interface {
	PostJSON(ctx context.Context, url string, payload interface{}) (*httpclient.Response, error)
}

// Notifier receives best-effort side effects of call outcomes.
type Notifier interface {
	AppointmentBooked(ctx context.Context, event *models.CallbackEvent)
	LeadQualified(ctx context.Context, results *models.FinalResults, customer models.Customer)
}

// Observer records dispatched statuses in addition to the prometheus counter.
type Observer interface {
	RecordCallback(ctx context.Context, status string)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	forwarder Forwarder
	store     results.Store
	sessions  session.Registry
	notifier  Notifier
	observer  Observer
	errors    *apperrors.ErrorHandler
	now       func() time.Time
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Forwarder    Forwarder
	Store        results.Store
	Sessions     session.Registry
	Notifier     Notifier
	Observer     Observer
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", Endpoint, err)
	}
	if handlerConfig.RequireKnownSession && opts.Sessions == nil {
		return nil, fmt.Errorf("%s: a session registry is required to reject unknown sessions", Endpoint)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"endpoint": Endpoint})

	forwarder := opts.Forwarder
	if forwarder == nil {
		forwarder = httpclient.NewClient(handlerConfig.ForwardTimeout, httpclient.WithUserAgent("growify-relay"))
	}

	store := opts.Store
	if store == nil || !handlerConfig.StoreResults {
		store = results.NopStore{}
	}

	if handlerConfig.Secret == "" {
		loggerInstance.Warn("Callback signature verification disabled", nil)
	}

	return &Handler{
		config:    handlerConfig,
		logger:    loggerInstance,
		forwarder: forwarder,
		store:     store,
		sessions:  opts.Sessions,
		notifier:  opts.Notifier,
		observer:  opts.Observer,
		errors:    apperrors.NewErrorHandler(loggerInstance),
		now:       time.Now,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.receive(w, r)
	case http.MethodGet:
		h.verify(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorBody{Error: "Method not allowed"})
	}
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
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

	if h.config.Secret != "" && !VerifySignature(h.config.Secret, body, r.Header.Get(SignatureHeader)) {
		h.fail(w, r, apperrors.NewSignatureInvalidError())
		return
	}

	event, err := parseEvent(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.config.RequireKnownSession {
		known, err := h.sessions.Exists(r.Context(), event.SessionID)
		if err != nil {
			h.fail(w, r, apperrors.NewInternalError(processFailedMessage, err))
			return
		}
		if !known {
			h.fail(w, r, apperrors.NewUnknownSessionError(event.SessionID))
			return
		}
	}

	ack := h.Execute(r.Context(), event)

	metrics.RelayRequestsTotal.WithLabelValues(Endpoint, "success").Inc()
	apperrors.WriteJSON(w, http.StatusOK, ack)
}

// Execute dispatches a verified event on its status. Every status produces
// exactly one acknowledgment.
func (h *Handler) Execute(ctx context.Context, event *models.CallbackEvent) *Ack {
	label := statusLabel(event.Status)
	metrics.CallbackEventsTotal.WithLabelValues(label).Inc()
	if h.observer != nil {
		h.observer.RecordCallback(ctx, label)
	}

	log := h.logger.WithFields(map[string]interface{}{
		"sessionId": event.SessionID,
		"status":    event.Status,
	})
	log.Info("Received webhook callback", nil)

	ack := &Ack{Success: true, SessionID: event.SessionID}

	switch event.Status {
	case models.CallStatusStarted:
		ack.Message = "Call started notification received"
		ack.Timestamp = h.timestamp()

	case models.CallStatusTranscriptUpdate:
		log.Debug("Transcript update", map[string]interface{}{
			"transcript": lastEntry(event.Transcript),
			"emotions":   lastEntry(event.Emotions),
		})
		count := len(event.Transcript)
		ack.Message = "Transcript update received"
		ack.TranscriptCount = &count

	case models.CallStatusEmotionDetected:
		log.Debug("Emotion detected", map[string]interface{}{
			"emotion":    lastEntry(event.Emotions),
			"confidence": event.ExtractedData["emotionConfidence"],
		})
		ack.Message = "Emotion detection received"
		if event.Emotions != nil {
			ack.Emotion = lastEntry(event.Emotions)
		}

	case models.CallStatusDataExtracted:
		log.Debug("Data extracted", map[string]interface{}{"extractedData": event.ExtractedData})
		ack.Message = "Data extraction completed"
		ack.ExtractedData = event.ExtractedData

	case models.CallStatusAppointmentBooked:
		log.Info("Appointment booked", map[string]interface{}{
			"event":    event.Event,
			"customer": event.Customer,
		})
		if h.notifier != nil {
			h.notifier.AppointmentBooked(ctx, event)
		}
		ack.Message = "Appointment booking completed"
		ack.Event = event.Event
		ack.Customer = event.Customer

	case models.CallStatusCompleted:
		return h.completeCall(ctx, log, event)

	case models.CallStatusFailed:
		log.Warn("Call failed", map[string]interface{}{
			"error":  event.Error,
			"reason": event.Reason,
		})
		ack.Success = false
		ack.Message = "Call failed"
		ack.Error = event.Error
		ack.Reason = event.Reason

	default:
		log.Info("Unknown callback status", nil)
		ack.Message = "Callback received"
		ack.Status = event.Status
	}

	return ack
}

// completeCall stores and forwards the final results. A failed forward only
// changes the acknowledgment; it never turns into a failure.
func (h *Handler) completeCall(ctx context.Context, log logger.Logger, event *models.CallbackEvent) *Ack {
	final := BuildFinalResults(event, h.timestamp())

	log.Info("Call completed", map[string]interface{}{
		"duration":        event.Duration,
		"transcriptCount": len(event.Transcript),
		"emotionCount":    len(event.Emotions),
		"leadScore":       final.LeadScore,
	})

	if id, err := h.store.SaveCallResult(ctx, final); err != nil {
		log.Error("Failed to store call results", map[string]interface{}{"error": err.Error()})
	} else if id != "" {
		log.Info("Call results stored", map[string]interface{}{"resultId": id})
	}

	if h.notifier != nil {
		h.notifier.LeadQualified(ctx, final, event.CustomerContact())
	}

	ack := &Ack{
		Success:   true,
		Message:   "Call completed",
		SessionID: event.SessionID,
		Results:   final,
	}

	webhookResponse, err := h.forward(ctx, event, final)
	if err != nil {
		stdErr := apperrors.NewForwardError(h.config.ForwardURL, err)
		log.Warn("Lead qualification forward failed", map[string]interface{}{
			"code":  stdErr.Code,
			"error": stdErr.Details,
		})
		ack.ShouldEndCall = boolPtr(false)
		return ack
	}

	log.Info("Lead qualification data forwarded", nil)
	ack.Message = "Call completed successfully"
	ack.WebhookResponse = webhookResponse
	ack.ShouldEndCall = boolPtr(true)
	return ack
}

// forward posts the lead-qualification payload exactly once.
func (h *Handler) forward(ctx context.Context, event *models.CallbackEvent, final *models.FinalResults) (map[string]interface{}, error) {
	if h.config.ForwardURL == "" {
		metrics.OutboundCallsTotal.WithLabelValues(Endpoint, "skipped").Inc()
		return nil, fmt.Errorf("no forward url configured")
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.ForwardTimeout)
	defer cancel()

	resp, err := h.forwarder.PostJSON(ctx, h.config.ForwardURL, BuildLeadQualificationPayload(event, final))
	if err != nil {
		metrics.OutboundCallsTotal.WithLabelValues(Endpoint, "failure").Inc()
		return nil, err
	}

	body, err := resp.DecodeObject()
	if err != nil {
		metrics.OutboundCallsTotal.WithLabelValues(Endpoint, "failure").Inc()
		return nil, err
	}

	metrics.OutboundCallsTotal.WithLabelValues(Endpoint, "success").Inc()
	return body, nil
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	if challenge := r.URL.Query().Get("challenge"); challenge != "" {
		apperrors.WriteJSON(w, http.StatusOK, map[string]string{"challenge": challenge})
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, StatusResponse{
		Message:   "GrowifyAI Webhook Endpoint",
		Status:    "active",
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339Nano)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.RelayRequestsTotal.WithLabelValues(Endpoint, string(stdErr.Code)).Inc()
	h.errors.HandleRequestError(w, r, stdErr)
}

func boolPtr(b bool) *bool { return &b }
