package businessanalyzer

// FailureResponse is the 500 body for a failed generator call.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
	Code    string `json:"code,omitempty"`
}

// JobStatusResponse answers GET lookups. Reports are never stored.
type JobStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

const (
	missingFieldsMessage = "Missing required fields"
	missingJobIDMessage  = "jobId parameter is required"
	jobLookupMessage     = "Job retrieval not yet implemented. Reports are returned immediately in the POST response."
	processFailedMessage = "Failed to process business analysis"
)
