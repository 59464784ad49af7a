// Package relay forwards demo requests to the voice-agent automation
// webhook and applies the configured fallback policy when that call fails.
package relay

import (
	"context"
	"fmt"
	"time"

	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/metrics"
	"growify-relay/internal/models"
	"growify-relay/internal/session"
)

// Request is one outbound demo call.
type Request struct {
	// Endpoint labels logs and metrics.
	Endpoint   string
	WebhookURL string
	Payload    models.AgentPayload
	Timeout    time.Duration

	// Used only when the fallback policy fabricates a response.
	DefaultWait       string
	SimulatedMessage  string
	SimulatedCalendar *models.CalendarIntegration
}

type Result struct {
	Response  models.AgentResponse
	Simulated bool
}

type Relayer struct {
	client     *httpclient.Client
	fallback   FallbackPolicy
	sessions   session.Registry
	sessionTTL time.Duration
	logger     logger.Logger
}

type Options struct {
	Client     *httpclient.Client
	Fallback   FallbackPolicy
	Sessions   session.Registry
	SessionTTL time.Duration
	Logger     logger.Logger
}

func NewRelayer(opts Options) *Relayer {
	r := &Relayer{
		client:     opts.Client,
		fallback:   opts.Fallback,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
		logger:     opts.Logger,
	}
	if r.fallback == nil {
		r.fallback = StrictFallback{}
	}
	if r.logger == nil {
		r.logger = logger.NewNoOpLogger()
	}
	if r.sessionTTL <= 0 {
		r.sessionTTL = time.Hour
	}
	return r
}

// Relay registers the session, posts the payload and returns the agent's
// reply. Any transport error, non-2xx status or non-object body is handed to
// the fallback policy.
func (r *Relayer) Relay(ctx context.Context, req *Request) (*Result, error) {
	log := r.logger.WithFields(map[string]interface{}{
		"endpoint":   req.Endpoint,
		"sessionId":  req.Payload.SessionID,
		"webhookUrl": req.WebhookURL,
	})

	r.registerSession(ctx, req.Payload.SessionID, log)

	resp, err := r.post(ctx, req)
	if err == nil {
		metrics.OutboundCallsTotal.WithLabelValues(req.Endpoint, "success").Inc()
		log.Info("agent webhook accepted demo request", map[string]interface{}{
			"callId": resp.CallID(),
		})
		return &Result{Response: resp}, nil
	}

	metrics.OutboundCallsTotal.WithLabelValues(req.Endpoint, "failure").Inc()
	log.Warn("agent webhook call failed", map[string]interface{}{
		"error":    err,
		"fallback": r.fallback.Name(),
	})

	fallback, ferr := r.fallback.OnFailure(req, err)
	if ferr != nil {
		return nil, ferr
	}
	metrics.FallbacksTotal.WithLabelValues(req.Endpoint).Inc()
	return &Result{Response: fallback, Simulated: true}, nil
}

func (r *Relayer) post(ctx context.Context, req *Request) (models.AgentResponse, error) {
	if req.WebhookURL == "" {
		return nil, fmt.Errorf("no webhook url configured")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	out, err := r.client.PostJSON(ctx, req.WebhookURL, req.Payload)
	if err != nil {
		return nil, err
	}

	body, err := out.DecodeObject()
	if err != nil {
		return nil, err
	}
	return models.AgentResponse(body), nil
}

// registerSession is best-effort: a registry outage must not block a demo.
func (r *Relayer) registerSession(ctx context.Context, sessionID string, log logger.Logger) {
	if r.sessions == nil {
		return
	}
	if err := r.sessions.Register(ctx, sessionID, r.sessionTTL); err != nil {
		log.Warn("failed to register session", map[string]interface{}{"error": err})
	}
}
