// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cat, cat.Validate()
}

// Validate checks ids and paths are unique and every entry is routable.
func (c *Catalog) Validate() error {
	ids := map[string]bool{}
	paths := map[string]bool{}
	for i, ep := range c.Endpoints {
		if ep.ID == "" {
			return fmt.Errorf("endpoint %d: id is required", i)
		}
		if !strings.HasPrefix(ep.Path, "/") {
			return fmt.Errorf("endpoint %s: path must start with /", ep.ID)
		}
		if len(ep.Methods) == 0 {
			return fmt.Errorf("endpoint %s: at least one method is required", ep.ID)
		}
		for _, m := range ep.Methods {
			switch m {
			case http.MethodGet, http.MethodPost:
			default:
				return fmt.Errorf("endpoint %s: unsupported method %s", ep.ID, m)
			}
		}
		if ids[ep.ID] {
			return fmt.Errorf("duplicate endpoint id %s", ep.ID)
		}
		if paths[ep.Path] {
			return fmt.Errorf("duplicate endpoint path %s", ep.Path)
		}
		ids[ep.ID] = true
		paths[ep.Path] = true
	}
	return nil
}

func (c *Catalog) Find(id string) (*Endpoint, bool) {
	for i := range c.Endpoints {
		if c.Endpoints[i].ID == id {
			return &c.Endpoints[i], true
		}
	}
	return nil, false
}

// WithEnabled returns a copy with each entry's Enabled flag set by isEnabled.
func (c *Catalog) WithEnabled(isEnabled func(id string) bool) *Catalog {
	out := &Catalog{
		Version:     c.Version,
		LastUpdated: c.LastUpdated,
		Endpoints:   make([]Endpoint, len(c.Endpoints)),
	}
	copy(out.Endpoints, c.Endpoints)
	for i := range out.Endpoints {
		out.Endpoints[i].Enabled = isEnabled(out.Endpoints[i].ID)
	}
	return out
}

// Default is the built-in catalog used when no registry file is configured.
func Default() *Catalog {
	return &Catalog{
		Version:     "1.0.0",
		LastUpdated: "2025-03-01",
		Endpoints: []Endpoint{
			{
				ID:          "lead-relay",
				DisplayName: "Lead Qualification Demo",
				Description: "Starts a lead qualification demo call through the automation webhook",
				Category:    "demo",
				Path:        "/api/demo/lead",
				Methods:     []string{http.MethodPost},
				Version:     "1.0.0",
				Public:      true,
				ErrorCodes:  []string{"VALIDATION_FAILED", "WEBHOOK_FAILED", "WEBHOOK_TIMEOUT", "ENDPOINT_DISABLED"},
				Timeout:     "10s",
				Tags:        []string{"voice-agent", "n8n"},
			},
			{
				ID:          "appointment-relay",
				DisplayName: "Appointment Booking Demo",
				Description: "Starts an appointment booking demo call with calendar context",
				Category:    "demo",
				Path:        "/api/demo/appointment",
				Methods:     []string{http.MethodPost},
				Version:     "1.0.0",
				Public:      true,
				ErrorCodes:  []string{"VALIDATION_FAILED", "WEBHOOK_FAILED", "WEBHOOK_TIMEOUT", "ENDPOINT_DISABLED"},
				Timeout:     "10s",
				Tags:        []string{"voice-agent", "calendar", "n8n"},
			},
			{
				ID:          "business-analyzer",
				DisplayName: "AI Business Analyzer",
				Description: "Generates a consulting-style report from seven business metrics",
				Category:    "automations",
				Path:        "/api/automations/business-analyzer",
				Methods:     []string{http.MethodGet, http.MethodPost},
				Version:     "1.0.0",
				Public:      true,
				ErrorCodes:  []string{"VALIDATION_FAILED", "LLM_FAILED", "LLM_TIMEOUT", "ENDPOINT_DISABLED"},
				Timeout:     "60s",
				Tags:        []string{"gemini", "report"},
			},
			{
				ID:          "agent-callback",
				DisplayName: "Agent Callback",
				Description: "Receives signed call status callbacks from the automation platform",
				Category:    "webhook",
				Path:        "/api/webhook/agent-callback",
				Methods:     []string{http.MethodGet, http.MethodPost},
				Version:     "1.0.0",
				ErrorCodes:  []string{"SIGNATURE_INVALID", "VALIDATION_FAILED", "UNKNOWN_SESSION"},
				Timeout:     "10s",
				Tags:        []string{"webhook", "hmac"},
			},
		},
	}
}
