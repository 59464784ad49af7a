package forms

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "idle"
}

// Result describes one submission attempt.
type Result struct {
	State      State
	StatusCode int
	Body       map[string]interface{}
	// Masked is set when a failure was reported as success.
	Masked bool
	Err    error
}

type SubmitterOptions struct {
	BaseURL string
	Client  *httpclient.Client
	// MaskFailures reports network and server failures as success, which is
	// what the demo modals show visitors.
	MaskFailures bool
	Logger       logger.Logger
}

type Submitter struct {
	baseURL      string
	client       *httpclient.Client
	maskFailures bool
	logger       logger.Logger

	mu    sync.Mutex
	state State
}

func NewSubmitter(opts SubmitterOptions) (*Submitter, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Submitter{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		client:       opts.Client,
		maskFailures: opts.MaskFailures,
		logger:       log,
	}, nil
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit validates form and posts it. Validation failures are returned
// without any network call and leave the state unchanged. A submission
// already in flight is rejected.
func (s *Submitter) Submit(ctx context.Context, form Form) (*Result, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	payload, err := form.Payload()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return nil, fmt.Errorf("a submission is already in progress")
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	url := s.baseURL + form.Endpoint()
	result := &Result{}

	resp, err := s.client.PostJSON(ctx, url, payload)
	if resp != nil {
		result.StatusCode = resp.StatusCode
		result.Body, _ = resp.DecodeObject()
	}

	switch {
	case err == nil:
		result.State = StateSuccess
	case s.maskFailures:
		s.logger.Warn("Submission failed, reporting success", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		result.State = StateSuccess
		result.Masked = true
	default:
		result.State = StateError
		result.Err = err
		if stderrors.Is(err, httpclient.ErrUnexpectedStatus) && result.Body != nil {
			if msg, ok := result.Body["error"].(string); ok {
				result.Err = fmt.Errorf("%s: %w", msg, err)
			}
		}
	}

	s.mu.Lock()
	s.state = result.State
	s.mu.Unlock()
	return result, nil
}

// Reset returns the submitter to idle, as closing the modal does.
func (s *Submitter) Reset() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}
