// pkg/registry/schema.go
package registry

// Catalog lists every HTTP endpoint the relay serves.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Endpoints   []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Version     string   `json:"version"`
	// Public endpoints are browser-facing and rate limited.
	Public     bool     `json:"public"`
	ErrorCodes []string `json:"errorCodes"`
	Timeout    string   `json:"timeout"`
	Tags       []string `json:"tags"`
	Enabled    bool     `json:"enabled"`
}
